package session

import (
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastreact/console/internal/constants"
)

const suffixLength = 9

// Identity assigns the session identifier exactly once.
type Identity struct {
	demo bool
	now  func() time.Time

	once sync.Once
	mu   sync.RWMutex
	id   string
}

// NewIdentity creates an unassigned identity.
func NewIdentity(demo bool, now func() time.Time) *Identity {
	if now == nil {
		now = time.Now
	}
	return &Identity{demo: demo, now: now}
}

// Assign generates the identifier on first call and returns it on every call.
func (i *Identity) Assign() string {
	i.once.Do(func() {
		id := constants.DemoSessionID
		if !i.demo {
			id = GenerateID(i.now())
		}
		i.mu.Lock()
		i.id = id
		i.mu.Unlock()
	})
	return i.ID()
}

// ID returns the identifier, or "" before Assign.
func (i *Identity) ID() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.id
}

// GenerateID returns a live session identifier of the form
// session-<unix-nano>-<9 base36 chars>.
func GenerateID(now time.Time) string {
	return fmt.Sprintf("session-%d-%s", now.UnixNano(), randomSuffix())
}

func randomSuffix() string {
	u := uuid.New()
	s := new(big.Int).SetBytes(u[:]).Text(36)
	if len(s) < suffixLength {
		s = strings.Repeat("0", suffixLength-len(s)) + s
	}
	return s[len(s)-suffixLength:]
}

// ValidateGatewayURL checks that base is an absolute ws or wss URL.
func ValidateGatewayURL(base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid gateway URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid gateway URL %q: scheme must be ws or wss", base)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid gateway URL %q: missing host", base)
	}
	return nil
}

// Endpoint joins the gateway base URL with the session id. A base that
// cannot be parsed is joined textually; dialing it then fails normally.
func Endpoint(base, id string) string {
	joined, err := url.JoinPath(base, id)
	if err != nil {
		return strings.TrimSuffix(base, "/") + "/" + id
	}
	return joined
}
