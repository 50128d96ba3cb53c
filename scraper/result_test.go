package scraper

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/rankscrape/models"
)

func TestAssemble_Success(t *testing.T) {
	rec := models.NewScrapedRecord(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	res := Assemble(&Report{Record: &rec, Wait: ContentTimedOut}, nil)
	require.True(t, res.OK())
	assert.Equal(t, ContentTimedOut, res.Wait)

	status, body := res.Response()
	assert.Equal(t, http.StatusOK, status)

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": true,
		"data": {"zoneName":"","bossName":"","tableRows":[],"timestamp":"2026-01-02T03:04:05Z"}
	}`, string(raw))
}

func TestAssemble_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantMsg    string
	}{
		{
			name:       "invalid input carries its own message",
			err:        models.NewScrapeError(models.ErrCodeInvalidInput, models.MsgInvalidURL, nil),
			wantStatus: http.StatusBadRequest,
			wantError:  models.MsgInvalidURL,
		},
		{
			name:       "navigation failure",
			err:        models.NewScrapeError(models.ErrCodeNavigation, "navigation to https://x.test failed", errors.New("raw")),
			wantStatus: http.StatusInternalServerError,
			wantError:  models.MsgScrapeFailed,
			wantMsg:    "navigation to https://x.test failed",
		},
		{
			name:       "rate limited",
			err:        models.NewScrapeError(models.ErrCodeRateLimited, "slow down", nil),
			wantStatus: http.StatusTooManyRequests,
			wantError:  models.MsgRateLimited,
		},
		{
			name:       "foreign error is internal and hides its text",
			err:        errors.New("secret stack detail"),
			wantStatus: http.StatusInternalServerError,
			wantError:  models.MsgScrapeFailed,
			wantMsg:    models.MsgInternalFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Assemble(nil, tt.err)
			require.False(t, res.OK())

			status, body := res.Response()
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, body.Success)
			assert.Nil(t, body.Data)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.NotContains(t, body.Message, "secret")
		})
	}
}

func TestAssemble_NilReport(t *testing.T) {
	res := Assemble(nil, nil)
	require.False(t, res.OK())
	assert.Equal(t, models.ErrCodeInternal, res.Err.Code)
}
