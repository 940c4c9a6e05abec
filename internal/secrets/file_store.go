package secrets

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const fileFormatVersion = 1

// argon2id parameters; tests lower kdfMemory
var (
	kdfTime    uint32 = 1
	kdfMemory  uint32 = 64 * 1024
	kdfThreads uint8  = 4
)

var ErrNoPassphrase = errors.New("secrets passphrase is required")

// FileStore keeps credentials in a single JSON file. Each value is sealed
// with XChaCha20-Poly1305 under a key derived from the passphrase with
// argon2id; the credential type is bound as additional data so entries
// cannot be swapped between slots.
type FileStore struct {
	mu         sync.Mutex
	path       string
	passphrase []byte
}

type fileContents struct {
	Version int                    `json:"version"`
	Salt    []byte                 `json:"salt"`
	Entries map[string]sealedValue `json:"entries"`
}

type sealedValue struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// NewFileStore returns a store backed by path. The file is created on the
// first write.
func NewFileStore(path, passphrase string) (*FileStore, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}
	if path == "" {
		return nil, errors.New("secrets path is required")
	}

	return &FileStore{
		path:       path,
		passphrase: []byte(passphrase),
	}, nil
}

func (s *FileStore) Store(ctx context.Context, credential CredentialType, value string) error {
	if err := checkArgs(credential); err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return ErrEmptyValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return err
	}

	aead, err := s.aead(contents.Salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	contents.Entries[string(credential)] = sealedValue{
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, []byte(value), []byte(credential)),
	}

	return s.save(contents)
}

func (s *FileStore) Get(ctx context.Context, credential CredentialType) (string, error) {
	if err := checkArgs(credential); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return "", err
	}

	entry, ok := contents.Entries[string(credential)]
	if !ok {
		return "", ErrNotFound
	}

	aead, err := s.aead(contents.Salt)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, entry.Nonce, entry.Ciphertext, []byte(credential))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s: wrong passphrase or corrupted store", credential)
	}
	return string(plaintext), nil
}

func (s *FileStore) Delete(ctx context.Context, credential CredentialType) error {
	if err := checkArgs(credential); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := contents.Entries[string(credential)]; !ok {
		return ErrNotFound
	}
	delete(contents.Entries, string(credential))

	return s.save(contents)
}

func (s *FileStore) Exists(ctx context.Context, credential CredentialType) (bool, error) {
	if err := checkArgs(credential); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return false, err
	}

	_, ok := contents.Entries[string(credential)]
	return ok, nil
}

func (s *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(s.passphrase, salt, kdfTime, kdfMemory, kdfThreads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise cipher: %w", err)
	}
	return aead, nil
}

// load reads the store file, returning fresh contents with a new salt when
// the file does not exist yet
func (s *FileStore) load() (*fileContents, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		salt := make([]byte, 16)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		return &fileContents{
			Version: fileFormatVersion,
			Salt:    salt,
			Entries: make(map[string]sealedValue),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file: %w", err)
	}
	if contents.Version != fileFormatVersion {
		return nil, fmt.Errorf("unsupported secrets file version %d", contents.Version)
	}
	if contents.Entries == nil {
		contents.Entries = make(map[string]sealedValue)
	}
	return &contents, nil
}

// save writes the contents atomically with owner-only permissions
func (s *FileStore) save(contents *fileContents) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}

	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode secrets file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary secrets file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set secrets file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace secrets file: %w", err)
	}
	return nil
}
