package fakeapi

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jask/mybudget/internal/api"
)

//go:embed seed/default.yaml
var defaultSeed []byte

// Seed is the initial dataset, usually loaded from YAML.
type Seed struct {
	Users []struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"users"`
	Accounts     []string          `yaml:"accounts"`
	Tags         []string          `yaml:"tags"`
	Transactions []SeedTransaction `yaml:"transactions"`
}

// SeedTransaction refers to accounts and tags by name. Day is relative to
// the load date; Data, when set, wins.
type SeedTransaction struct {
	Day          int      `yaml:"day"`
	Data         string   `yaml:"data"`
	Importo      string   `yaml:"importo"`
	Descrizione  string   `yaml:"descrizione"`
	Conto        string   `yaml:"conto"`
	Destinazione string   `yaml:"destinazione"`
	Tags         []string `yaml:"tags"`
}

// DefaultSeed returns the built-in demo dataset.
func DefaultSeed() (Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads path, or the built-in dataset when path is empty.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

// apply loads the seed into an empty store.
func (s *store) apply(seed Seed, now time.Time) error {
	for _, u := range seed.Users {
		if _, err := s.register(api.Registration{Name: u.Name, Email: u.Email, Password: u.Password, PasswordConfirmation: u.Password}); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	accounts := map[string]int64{}
	for _, name := range seed.Accounts {
		a, err := s.saveAccount(0, api.AccountInput{Nome: name})
		if err != nil {
			return fmt.Errorf("seed account %q: %w", name, err)
		}
		accounts[name] = a.ID
	}
	tags := map[string]int64{}
	for _, name := range seed.Tags {
		t, err := s.saveTag(0, api.TagInput{Nome: name})
		if err != nil {
			return fmt.Errorf("seed tag %q: %w", name, err)
		}
		tags[name] = t.ID
	}
	for i, st := range seed.Transactions {
		amount, err := decimal.NewFromString(st.Importo)
		if err != nil {
			return fmt.Errorf("seed transaction %d: %w", i, err)
		}
		date := st.Data
		if date == "" {
			date = now.AddDate(0, 0, st.Day).Format(api.DateLayout)
		}
		in := api.TransactionInput{
			DataOperazione: date,
			Importo:        amount,
			Descrizione:    st.Descrizione,
			ContoID:        accounts[st.Conto],
		}
		if st.Destinazione != "" {
			dest := accounts[st.Destinazione]
			in.ContoDestinazioneID = &dest
		}
		for _, name := range st.Tags {
			in.Tags = append(in.Tags, tags[name])
		}
		if _, err := s.createTransaction(in); err != nil {
			return fmt.Errorf("seed transaction %d: %w", i, err)
		}
	}
	return nil
}
