// ABOUTME: OAuth 1.0a HMAC-SHA1 request signing.
// ABOUTME: Builds the signature base string, computes oauth_signature, and renders the Authorization header.
package oauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SignatureMethod and Version are fixed for every signed request.
const (
	SignatureMethod = "HMAC-SHA1"
	Version         = "1.0"
)

// PercentEncode applies RFC 3986 encoding: everything except ALPHA, DIGIT, '-', '.', '_', '~'
// is escaped, including the !'()* characters that encodeURIComponent-style encoders leave alone.
func PercentEncode(s string) string {
	// QueryEscape already escapes !'()* and leaves -._~ alone; only space differs.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// ParameterString encodes, sorts by encoded key, and joins params as k=v&k=v.
func ParameterString(params map[string]string) string {
	type pair struct{ k, v string }
	pairs := make([]pair, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, pair{PercentEncode(k), PercentEncode(v)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k == pairs[j].k {
			return pairs[i].v < pairs[j].v
		}
		return pairs[i].k < pairs[j].k
	})

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.k + "=" + p.v
	}
	return strings.Join(parts, "&")
}

// BaseString builds METHOD&enc(baseURL)&enc(parameterString).
func BaseString(method, baseURL string, params map[string]string) string {
	return strings.ToUpper(method) + "&" + PercentEncode(baseURL) + "&" + PercentEncode(ParameterString(params))
}

// SigningKey builds enc(consumerSecret)&enc(tokenSecret).
func SigningKey(consumerSecret, tokenSecret string) string {
	return PercentEncode(consumerSecret) + "&" + PercentEncode(tokenSecret)
}

// Signature computes the base64 HMAC-SHA1 oauth_signature. It is a pure function.
func Signature(method, baseURL string, params map[string]string, consumerSecret, tokenSecret string) string {
	mac := hmac.New(sha1.New, []byte(SigningKey(consumerSecret, tokenSecret)))
	mac.Write([]byte(BaseString(method, baseURL, params)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// AuthorizationHeader renders `OAuth k="v", ...` from the oauth_* entries of params, sorted by key.
func AuthorizationHeader(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.HasPrefix(k, "oauth_") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf(`%s="%s"`, PercentEncode(k), PercentEncode(params[k]))
	}
	return "OAuth " + strings.Join(parts, ", ")
}

// NormalizeURL splits a request URL into the signature base URL (scheme and host
// lowercased, no query or fragment) and its query parameters.
func NormalizeURL(rawURL string) (string, map[string]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", nil, fmt.Errorf("url %q must be absolute", rawURL)
	}

	query := make(map[string]string)
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			query[k] = vs[0]
		}
	}

	host := strings.ToLower(u.Host)
	scheme := strings.ToLower(u.Scheme)
	if (scheme == "http" && strings.HasSuffix(host, ":80")) || (scheme == "https" && strings.HasSuffix(host, ":443")) {
		host = host[:strings.LastIndex(host, ":")]
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path, query, nil
}

// Signer holds the consumer credentials and produces signed Authorization headers.
type Signer struct {
	ConsumerKey    string
	ConsumerSecret string

	// Nonce and Now are replaceable for deterministic tests.
	Nonce func() string
	Now   func() time.Time
}

// NewSigner creates a signer with a random nonce source and the wall clock.
func NewSigner(consumerKey, consumerSecret string) *Signer {
	return &Signer{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		Nonce:          NewNonce,
		Now:            time.Now,
	}
}

// NewNonce returns 32 random hex characters.
func NewNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Sign returns the Authorization header for a request.
//
// oauthParams carries request-specific oauth_* values (oauth_callback, oauth_token,
// oauth_verifier). params are the non-OAuth request parameters that the signature
// must cover: form or query parameters, never a JSON body. Query parameters found in
// rawURL are covered automatically.
func (s *Signer) Sign(method, rawURL string, oauthParams, params map[string]string, tokenSecret string) (string, error) {
	baseURL, query, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	nonce, now := NewNonce, time.Now
	if s.Nonce != nil {
		nonce = s.Nonce
	}
	if s.Now != nil {
		now = s.Now
	}

	header := map[string]string{
		"oauth_consumer_key":     s.ConsumerKey,
		"oauth_nonce":            nonce(),
		"oauth_signature_method": SignatureMethod,
		"oauth_timestamp":        strconv.FormatInt(now().Unix(), 10),
		"oauth_version":          Version,
	}
	for k, v := range oauthParams {
		header[k] = v
	}

	all := make(map[string]string, len(header)+len(params)+len(query))
	for k, v := range query {
		all[k] = v
	}
	for k, v := range params {
		all[k] = v
	}
	for k, v := range header {
		all[k] = v
	}

	header["oauth_signature"] = Signature(method, baseURL, all, s.ConsumerSecret, tokenSecret)
	return AuthorizationHeader(header), nil
}
