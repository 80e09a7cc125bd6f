package usm

import (
	"encoding/hex"
	"sync"
)

// User holds the credentials and per-engine derived-key cache for an
// SNMPv3 principal. Keys are localized lazily, the first time the user is
// used against a given engine, since localization requires the engine ID
// that discovery (or a prior exchange) supplies.
type User struct {
	Name string

	AuthProtocol AuthProtocol
	AuthPassword string

	PrivProtocol PrivProtocol
	PrivPassword string

	mu       sync.Mutex
	authKeys map[string][]byte
	privKeys map[string][]byte
}

// RequiresAuth reports whether the user authenticates its messages.
func (u *User) RequiresAuth() bool { return u.AuthProtocol != AuthNone }

// RequiresPriv reports whether the user encrypts its messages.
func (u *User) RequiresPriv() bool { return u.PrivProtocol != PrivNone }

// Validate checks the user's protocol/password combination is coherent,
// privacy requires authentication, and any non-None
// protocol requires its password.
func (u *User) Validate() error {
	if u.RequiresAuth() && u.AuthPassword == "" {
		return newErr(ErrMissingAuthPassword, u.Name)
	}
	if u.RequiresPriv() && !u.RequiresAuth() {
		return newErr(ErrPrivRequiresAuth, u.Name)
	}
	if u.RequiresPriv() && u.PrivPassword == "" {
		return newErr(ErrMissingAuthPassword, u.Name)
	}
	return nil
}

// AuthKey returns the user's authentication key localized to engineID,
// deriving and caching it on first use.
func (u *User) AuthKey(engineID []byte) ([]byte, error) {
	if u.AuthProtocol == AuthNone {
		return nil, nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	k := hex.EncodeToString(engineID)
	if key, ok := u.authKeys[k]; ok {
		return key, nil
	}

	key, err := LocalizedAuthKey(u.AuthPassword, engineID, u.AuthProtocol)
	if err != nil {
		return nil, err
	}
	if u.authKeys == nil {
		u.authKeys = make(map[string][]byte)
	}
	u.authKeys[k] = key
	return key, nil
}

// PrivKey returns the user's privacy key localized to engineID, deriving
// and caching it on first use.
func (u *User) PrivKey(engineID []byte) ([]byte, error) {
	if u.PrivProtocol == PrivNone {
		return nil, nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	k := hex.EncodeToString(engineID)
	if key, ok := u.privKeys[k]; ok {
		return key, nil
	}

	key, err := LocalizedPrivKey(u.PrivPassword, engineID, u.AuthProtocol, u.PrivProtocol)
	if err != nil {
		return nil, err
	}
	if u.privKeys == nil {
		u.privKeys = make(map[string][]byte)
	}
	u.privKeys[k] = key
	return key, nil
}

// EngineState tracks the authoritative engine's boots/time counters for
// one SNMPv3 conversation, used both to stamp outgoing messages and to
// validate the time window on incoming ones.
type EngineState struct {
	EngineID []byte
	Boots    int32
	Time     int32
}

// ValidateWindow checks a received message's engineBoots/engineTime
// against the locally tracked state, per RFC 3414's time window rule.
func (s *EngineState) ValidateWindow(msgBoots, msgTime int32) error {
	deltaBoots := msgBoots - s.Boots
	if deltaBoots < 0 {
		deltaBoots = -deltaBoots
	}
	if deltaBoots > 1 {
		return newErr(ErrEngineBootsMismatch, "")
	}

	deltaTime := msgTime - s.Time
	if deltaTime < 0 {
		deltaTime = -deltaTime
	}
	if deltaTime > 150 {
		return newErr(ErrTimeWindowExceeded, "")
	}
	return nil
}
