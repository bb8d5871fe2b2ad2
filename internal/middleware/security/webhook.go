package security

import (
	"crypto/subtle"
	"net/http"

	saldolog "saldo/internal/log"
)

// SecretTokenHeader carries the secret_token given to setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecret rejects requests whose secret token header does not match.
// An empty secret disables the check.
func (d *Detector) WebhookSecret(secret string, logger *saldolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		want := []byte(secret)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(SecretTokenHeader))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				d.rejected.Add(1)
				logger.WarnContext(r.Context(), "Webhook secret mismatch",
					saldolog.FieldClientIP, d.ExtractClientIP(r),
					"header_present", len(got) > 0)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
