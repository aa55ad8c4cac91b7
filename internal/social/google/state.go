package google

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StateManager signs and verifies the OAuth state parameter so the
// callback can reject forged or replayed redirects.
type StateManager struct {
	key []byte
	ttl time.Duration
}

type statePayload struct {
	Nonce     string `json:"n"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// NewStateManager creates a state manager signing with the given key
func NewStateManager(key []byte, ttl time.Duration) *StateManager {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &StateManager{key: key, ttl: ttl}
}

// Encode produces a fresh signed state token
func (sm *StateManager) Encode() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	now := time.Now()
	payload, err := json.Marshal(statePayload{
		Nonce:     base64.RawURLEncoding.EncodeToString(nonce),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(sm.ttl).Unix(),
	})
	if err != nil {
		return "", err
	}

	sig := sm.sign(payload)
	return base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Verify checks the signature and expiry of a state token
func (sm *StateManager) Verify(token string) error {
	idx := strings.IndexByte(token, '.')
	if idx <= 0 || idx == len(token)-1 {
		return fmt.Errorf("google: invalid state")
	}
	payloadPart, sigPart := token[:idx], token[idx+1:]

	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return fmt.Errorf("google: invalid state encoding")
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return fmt.Errorf("google: invalid state encoding")
	}

	if !hmac.Equal(sig, sm.sign(payload)) {
		return fmt.Errorf("google: state signature mismatch")
	}

	var decoded statePayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("google: invalid state payload")
	}

	if time.Now().Unix() > decoded.ExpiresAt {
		return fmt.Errorf("google: state expired")
	}

	return nil
}

func (sm *StateManager) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, sm.key)
	mac.Write(payload)
	return mac.Sum(nil)
}
