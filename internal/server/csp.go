package server

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// GenerateNonce produces a 16-byte cryptographically random nonce,
// returned as a base64-encoded string.
func GenerateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// CSPPolicy holds the directives for a Content-Security-Policy header.
type CSPPolicy struct {
	DefaultSrc []string
	ScriptSrc  []string
	StyleSrc   []string
	ImgSrc     []string
	ConnectSrc []string
	BaseURI    []string
	FormAction []string
	FrameAnc   []string
}

// String serializes the policy to a CSP header value.
func (p *CSPPolicy) String() string {
	var directives []string
	add := func(name string, values []string) {
		if len(values) > 0 {
			directives = append(directives, name+" "+strings.Join(values, " "))
		}
	}
	add("default-src", p.DefaultSrc)
	add("script-src", p.ScriptSrc)
	add("style-src", p.StyleSrc)
	add("img-src", p.ImgSrc)
	add("connect-src", p.ConnectSrc)
	add("base-uri", p.BaseURI)
	add("form-action", p.FormAction)
	add("frame-ancestors", p.FrameAnc)
	return strings.Join(directives, "; ")
}

// DevPolicy returns the CSP for the preview page. The nonce authorises the
// page's inline scripts and the live reload socket may connect on port.
func DevPolicy(nonce string, port int) *CSPPolicy {
	return &CSPPolicy{
		DefaultSrc: []string{"'none'"},
		ScriptSrc:  []string{"'self'", fmt.Sprintf("'nonce-%s'", nonce)},
		StyleSrc:   []string{"'self'", "'unsafe-inline'"},
		ImgSrc:     []string{"'self'", "data:"},
		ConnectSrc: []string{"'self'", fmt.Sprintf("ws://localhost:%d", port)},
		BaseURI:    []string{"'self'"},
		FormAction: []string{"'self'"},
		FrameAnc:   []string{"'none'"},
	}
}

// setSecurityHeaders writes the headers every response carries, plus the
// CSP and framing headers when policy is non-nil (HTML responses).
func setSecurityHeaders(h http.Header, policy *CSPPolicy) {
	h.Set("X-Content-Type-Options", "nosniff")
	if policy == nil {
		return
	}
	h.Set("Content-Security-Policy", policy.String())
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
}
