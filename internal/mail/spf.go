package mail

import (
	"log/slog"
	"strings"
)

// AuthenticateSender applies the SPF policy to a parsed inbound email:
// only an explicit "fail" verdict is rejected. Pass, neutral, softfail,
// and absent verdicts are all accepted. The DKIM verdict is recorded and
// logged but deliberately not enforced.
func AuthenticateSender(log *slog.Logger, in InboundEmail) error {
	if strings.EqualFold(strings.TrimSpace(in.SPFResult), "fail") {
		log.Warn("rejecting sender on SPF fail",
			slog.String("from", in.From),
			slog.String("spf", in.SPFResult))
		return ErrSPFFailed
	}
	if in.DKIMResult != "" {
		log.Debug("dkim verdict recorded",
			slog.String("from", in.From),
			slog.String("dkim", in.DKIMResult))
	}
	return nil
}
