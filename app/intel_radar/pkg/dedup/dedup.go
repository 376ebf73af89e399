// Package dedup assigns content fingerprints and drops repeated documents.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

var trackingParams = map[string]bool{
	"fbclid": true, "gclid": true, "dclid": true, "msclkid": true,
	"mc_cid": true, "mc_eid": true, "igshid": true, "yclid": true,
	"ref": true, "ref_src": true, "spm": true, "_ga": true,
	"_hsenc": true, "_hsmi": true, "cmpid": true, "ocid": true,
}

func isTracking(key string) bool {
	k := strings.ToLower(key)
	return strings.HasPrefix(k, "utm_") || trackingParams[k]
}

// CanonicalURL normalizes raw for identity comparison. It returns "" when
// raw is not an absolute URL.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil

	params := u.Query()
	for k := range params {
		if isTracking(k) {
			params.Del(k)
		}
	}
	// Encode sorts by key.
	u.RawQuery = params.Encode()

	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
		u.RawPath = ""
	} else {
		u.Path = ""
	}
	return u.String()
}

// Fingerprint is the identity key of d: the canonical URL hash when a URL is
// present, otherwise a hash of the normalized title and source.
func Fingerprint(d model.Document) string {
	if c := CanonicalURL(d.URL); c != "" {
		return "u:" + digest(c)
	}
	title := strings.ToLower(textutil.NormalizeSpace(d.Title))
	src := strings.ToLower(strings.TrimSpace(d.Source))
	return "t:" + digest(title+"\x00"+src)
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}

// Deduplicate keeps the first document per fingerprint, in input order, and
// sets each survivor's ID to its fingerprint.
func Deduplicate(docs []model.Document) []model.Document {
	seen := make(map[string]struct{}, len(docs))
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		fp := Fingerprint(d)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		d.ID = fp
		out = append(out, d)
	}
	return out
}
