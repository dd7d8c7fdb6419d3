package mail

import "context"

// Mailer delivers verification codes to users. Send failures must surface
// to the caller so no state is persisted for undelivered codes.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, code int64, to string) error
}
