package pipeline

import (
	"context"
	"log/slog"
	netmail "net/mail"
	"regexp"
	"strings"

	"github.com/tribehq/tribemail/internal/mail"
)

// Kind classifies which branch an inbound email was routed to.
type Kind string

const (
	KindMemory   Kind = "memory"
	KindResponse Kind = "response"
	KindUnknown  Kind = "unknown"
)

// Outcome is the sole result of routing one inbound email. A false
// Success with a Reason is a client error; server-side failures travel
// as ordinary errors alongside it.
type Outcome struct {
	Success  bool
	Kind     Kind
	EntityID string
	Reason   string
}

func failure(kind Kind, reason string) Outcome {
	return Outcome{Kind: kind, Reason: reason}
}

var updateAddressRe = regexp.MustCompile(`^update-([a-f0-9-]+)@`)

// Router dispatches on the inbound to address: the configured memory
// inbox creates a memory, an update-<uuid> address threads a response,
// anything else is unknown.
type Router struct {
	memoryAddress string
	memories      *MemoryHandler
	responses     *ResponseHandler
	logger        *slog.Logger
}

func NewRouter(log *slog.Logger, memoryAddress string, memories *MemoryHandler, responses *ResponseHandler) *Router {
	return &Router{
		memoryAddress: strings.ToLower(memoryAddress),
		memories:      memories,
		responses:     responses,
		logger:        log.With(slog.String("component", "router")),
	}
}

// Route inspects the to address case-insensitively and runs the matching
// handler. A returned error is a server fault; everything else is
// expressed in the Outcome.
func (r *Router) Route(ctx context.Context, in mail.InboundEmail) (Outcome, error) {
	to := strings.ToLower(addressOnly(in.To))

	if strings.Contains(to, r.memoryAddress) {
		return r.memories.Handle(ctx, in)
	}
	if m := updateAddressRe.FindStringSubmatch(to); m != nil {
		return r.responses.Handle(ctx, in, m[1])
	}

	r.logger.Info("unroutable recipient address", slog.String("to", in.To))
	return failure(KindUnknown, "Unrecognized recipient address"), nil
}

// addressOnly reduces "Name <address>" to the bare address.
func addressOnly(raw string) string {
	raw = strings.TrimSpace(raw)
	if addr, err := netmail.ParseAddress(raw); err == nil {
		return addr.Address
	}
	return raw
}
