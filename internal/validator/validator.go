package validator

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidCorreo   = errors.New("invalid correo")
	ErrInvalidNombre   = errors.New("invalid nombre")
	ErrInvalidTelefono = errors.New("invalid telefono")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidCuenta   = errors.New("invalid cuenta")
)

var (
	correoRegex   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	telefonoRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	cuentaRegex   = regexp.MustCompile(`^[0-9]{16}$`)
)

const (
	MinPasswordLength = 8
	maxNombreLength   = 60
)

func ValidateCorreo(correo string) error {
	if !correoRegex.MatchString(correo) {
		return ErrInvalidCorreo
	}
	return nil
}

func ValidateNombre(nombre string) error {
	trimmed := strings.TrimSpace(nombre)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxNombreLength {
		return ErrInvalidNombre
	}
	return nil
}

// NormalizeTelefono drops every space so stored numbers compare equal however they were typed.
func NormalizeTelefono(telefono string) string {
	return strings.ReplaceAll(strings.TrimSpace(telefono), " ", "")
}

// ValidateTelefono accepts 7 to 15 digits with an optional leading plus; spaces are ignored.
func ValidateTelefono(telefono string) error {
	if !telefonoRegex.MatchString(NormalizeTelefono(telefono)) {
		return ErrInvalidTelefono
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateCuenta(cuenta string) error {
	if !cuentaRegex.MatchString(cuenta) {
		return ErrInvalidCuenta
	}
	return nil
}
