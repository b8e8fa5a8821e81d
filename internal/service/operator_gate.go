package service

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadPassword = errors.New("operator password rejected")

// OperatorGate — парольный шлюз операторской панели. Один общий пароль на
// клинику; никакой системы пользователей за ним нет.
type OperatorGate struct {
	hash  string // bcrypt-хеш; если задан, имеет приоритет
	plain string
}

func NewOperatorGate(hash, plain string) *OperatorGate {
	return &OperatorGate{hash: hash, plain: plain}
}

// Verify проверяет пароль оператора: bcrypt-сравнение при заданном хеше,
// иначе сравнение с открытым паролем за постоянное время.
func (g *OperatorGate) Verify(password string) error {
	if g.hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(g.hash), []byte(password)); err != nil {
			return ErrBadPassword
		}
		return nil
	}

	if g.plain == "" {
		return ErrBadPassword
	}
	if subtle.ConstantTimeCompare([]byte(g.plain), []byte(password)) != 1 {
		return ErrBadPassword
	}
	return nil
}
