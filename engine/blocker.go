package engine

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blockableTypes are the resource types a session may refuse. Scripts and
// documents are never blockable: ranking tables are rendered by page JS.
var blockableTypes = map[string]proto.NetworkResourceType{
	"image":      proto.NetworkResourceTypeImage,
	"stylesheet": proto.NetworkResourceTypeStylesheet,
	"font":       proto.NetworkResourceTypeFont,
	"media":      proto.NetworkResourceTypeMedia,
}

// trackerHosts are ad and analytics registrable domains. Subdomains match.
var trackerHosts = newHostSet(
	// ad exchanges
	"doubleclick.net", "googlesyndication.com", "googleadservices.com",
	"googletagservices.com", "adnxs.com", "adsrvr.org", "amazon-adsystem.com",
	"criteo.com", "criteo.net", "pubmatic.com", "rubiconproject.com",
	"openx.net", "casalemedia.com", "bidswitch.net", "contextweb.com",
	"media.net", "zedo.com", "serving-sys.com", "mathtag.com", "turn.com",
	// content recommendation
	"outbrain.com", "taboola.com",
	// analytics and tag managers
	"google-analytics.com", "googletagmanager.com", "scorecardresearch.com",
	"quantserve.com", "hotjar.com", "mixpanel.com", "segment.io", "segment.com",
	"chartbeat.com", "chartbeat.net", "optimizely.com", "moatads.com",
	// data brokers
	"demdex.net", "krxd.net", "bluekai.com", "exelator.com", "eyeota.net",
	"agkn.com", "rlcdn.com",
	// social widgets and consent
	"facebook.net", "ads-twitter.com", "sharethis.com", "addthis.com",
	"consensu.org",
)

type hostSet map[string]struct{}

func newHostSet(hosts ...string) hostSet {
	s := make(hostSet, len(hosts))
	for _, h := range hosts {
		s[h] = struct{}{}
	}
	return s
}

// matches reports whether host or any parent domain is in the set.
func (s hostSet) matches(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for host != "" {
		if _, ok := s[host]; ok {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			return false
		}
		host = host[i+1:]
	}
	return false
}

// blockPolicy decides per request whether a session loads it.
type blockPolicy struct {
	types map[proto.NetworkResourceType]struct{}
	ads   bool
}

func newBlockPolicy(resources []string, ads bool) blockPolicy {
	p := blockPolicy{types: make(map[proto.NetworkResourceType]struct{}), ads: ads}
	for _, name := range resources {
		if rt, ok := blockableTypes[strings.ToLower(strings.TrimSpace(name))]; ok {
			p.types[rt] = struct{}{}
		}
	}
	return p
}

func (p blockPolicy) empty() bool {
	return len(p.types) == 0 && !p.ads
}

func (p blockPolicy) blocks(rt proto.NetworkResourceType, rawURL string) bool {
	if _, ok := p.types[rt]; ok {
		return true
	}
	if !p.ads {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return trackerHosts.matches(u.Hostname())
}

// installBlocker intercepts every request on page and fails the ones p
// blocks. It returns nil when p blocks nothing; otherwise the caller must
// Stop the router before closing the page.
func installBlocker(page *rod.Page, p blockPolicy) *rod.HijackRouter {
	if p.empty() {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if p.blocks(h.Request.Type(), h.Request.URL().String()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()

	return router
}
