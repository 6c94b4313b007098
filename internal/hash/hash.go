package hash

import "golang.org/x/crypto/bcrypt"

// Bcrypt hashes passwords with a configurable cost. The zero value uses
// bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashbytes), nil
}

func (b Bcrypt) Check(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
