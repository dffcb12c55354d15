package push

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the webhook signature:
//
//	X-Lightwatch-Signature: t=<unix>,v1=<hex hmac-sha256>
//
// The signed content is "<unix>.<body>".
const SignatureHeader = "X-Lightwatch-Signature"

// Sign returns the signature header value for body.
func Sign(body []byte, secret string, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("webhook signature: empty secret")
	}
	ts := now.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, computeHMAC(ts, body, secret)), nil
}

// Verify checks header against body. A signature older or newer than
// tolerance relative to now is rejected; a zero tolerance disables the check.
func Verify(body []byte, header, secret string, now time.Time, tolerance time.Duration) bool {
	var (
		ts  int64
		sig string
	)
	for _, segment := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(segment), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, _ = strconv.ParseInt(value, 10, 64)
		case "v1":
			sig = value
		}
	}
	if ts == 0 || sig == "" || secret == "" {
		return false
	}
	if tolerance > 0 {
		skew := now.Sub(time.Unix(ts, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > tolerance {
			return false
		}
	}
	return hmac.Equal([]byte(sig), []byte(computeHMAC(ts, body, secret)))
}

func computeHMAC(ts int64, body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
