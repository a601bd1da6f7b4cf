package inmemdb

import (
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/placement/core/session"
)

// Account is a sandbox login. Students carry their mentors' IDs.
type Account struct {
	session.User
	PasswordHash     []byte
	AcademicMentorID string
	IndustryMentorID string
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// MentorsStudent reports whether mentorID is one of the student's mentors.
func (a *Account) MentorsStudent(mentorID string) bool {
	return mentorID != "" && (a.AcademicMentorID == mentorID || a.IndustryMentorID == mentorID)
}

func (db *DB) CreateAccount(acc Account) (Account, error) {
	db.accounts.mutex.Lock()
	defer db.accounts.mutex.Unlock()

	acc.Email = strings.ToLower(acc.Email)
	for _, a := range db.accounts.t {
		if a.Email == acc.Email {
			return Account{}, ErrExists
		}
	}
	if acc.ID == "" {
		acc.ID = newID()
	}
	db.accounts.t[acc.ID] = &acc
	return acc, nil
}

func (db *DB) GetAccountByID(id string) (Account, error) {
	db.accounts.mutex.RLock()
	defer db.accounts.mutex.RUnlock()

	if acc, ok := db.accounts.t[id]; ok {
		return *acc, nil
	}
	return Account{}, ErrNotFound
}

func (db *DB) GetAccountByEmail(email string) (Account, error) {
	db.accounts.mutex.RLock()
	defer db.accounts.mutex.RUnlock()

	email = strings.ToLower(email)
	for _, acc := range db.accounts.t {
		if acc.Email == email {
			return *acc, nil
		}
	}
	return Account{}, ErrNotFound
}

// QueryAccounts lists accounts holding one of roles (all accounts when none), ordered by name.
func (db *DB) QueryAccounts(roles ...session.Role) []Account {
	db.accounts.mutex.RLock()
	defer db.accounts.mutex.RUnlock()

	accs := make([]Account, 0, len(db.accounts.t))
	for _, acc := range db.accounts.t {
		if len(roles) == 0 || acc.HasRole(roles...) {
			accs = append(accs, *acc)
		}
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].Name < accs[j].Name })
	return accs
}

// StudentsOf lists the students the mentor supervises.
func (db *DB) StudentsOf(mentorID string) []Account {
	students := db.QueryAccounts(session.RoleStudent)
	out := students[:0]
	for _, s := range students {
		if s.MentorsStudent(mentorID) {
			out = append(out, s)
		}
	}
	return out
}
