package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// per-user ticket file (0600) with AES-GCM obfuscation.
// Not a replacement for OS keychains but keeps tickets out of config.toml.

const fileName = "tickets.json"

// ErrNoTicket is returned when no ticket is stored for a model.
var ErrNoTicket = errors.New("ticket not found")

type ticketFile struct {
	Tickets map[string]string `json:"tickets"` // model -> base64(ciphertext)
}

// TicketStore keeps backend tickets per model name.
type TicketStore struct {
	dir string
}

// NewTicketStore stores tickets in dir. An empty dir means the user config
// dir.
func NewTicketStore(dir string) (*TicketStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "paramdeck")
	}
	return &TicketStore{dir: dir}, nil
}

func (s *TicketStore) Put(model, ticket string) error {
	if model = norm(model); model == "" {
		return fmt.Errorf("model required")
	}
	sf, err := s.load()
	if err != nil {
		return err
	}
	ct, err := encrypt([]byte(ticket))
	if err != nil {
		return err
	}
	sf.Tickets[model] = base64.StdEncoding.EncodeToString(ct)
	return s.save(sf)
}

func (s *TicketStore) Get(model string) (string, error) {
	if model = norm(model); model == "" {
		return "", fmt.Errorf("model required")
	}
	sf, err := s.load()
	if err != nil {
		return "", err
	}
	enc, ok := sf.Tickets[model]
	if !ok {
		return "", ErrNoTicket
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

func (s *TicketStore) Delete(model string) error {
	if model = norm(model); model == "" {
		return fmt.Errorf("model required")
	}
	sf, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := sf.Tickets[model]; !ok {
		return ErrNoTicket
	}
	delete(sf.Tickets, model)
	return s.save(sf)
}

func (s *TicketStore) path() string { return filepath.Join(s.dir, fileName) }

func (s *TicketStore) load() (ticketFile, error) {
	sf := ticketFile{Tickets: map[string]string{}}
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return sf, nil
		}
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, err
	}
	if sf.Tickets == nil {
		sf.Tickets = map[string]string{}
	}
	return sf, nil
}

func (s *TicketStore) save(sf ticketFile) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil { // restrict directory
		return err
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() []byte {
	base := fmt.Sprintf("paramdeck-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
