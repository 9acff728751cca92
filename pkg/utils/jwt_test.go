package utils

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "clave-de-prueba")

	exp := time.Now().Add(time.Hour)
	token, err := GenerateJWTToken(42, "ana@clinica.pe", "jefe_servicio", 3, "Ana Quispe", exp)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}

	claims, err := ValidateJWTToken(token)
	if err != nil {
		t.Fatalf("ValidateJWTToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "ana@clinica.pe" {
		t.Errorf("claims de identidad incorrectos: %+v", claims)
	}
	if claims.Role != "jefe_servicio" || claims.SectionID != 3 {
		t.Errorf("rol o sección incorrectos: %+v", claims)
	}
	if claims.Name != "Ana Quispe" {
		t.Errorf("Name = %q", claims.Name)
	}
}

func TestJWTExpiredTokenRejected(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "clave-de-prueba")

	token, err := GenerateJWTToken(1, "x@y.pe", "usuario", 0, "X", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}
	if _, err := ValidateJWTToken(token); err == nil {
		t.Error("un token vencido debe rechazarse")
	}
}

func TestJWTMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	if _, err := GenerateJWTToken(1, "x@y.pe", "usuario", 0, "X", time.Now().Add(time.Hour)); err == nil {
		t.Error("sin clave secreta debe fallar")
	}
}

func TestJWTTamperedTokenRejected(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "clave-de-prueba")

	token, err := GenerateJWTToken(1, "x@y.pe", "usuario", 0, "X", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}

	t.Setenv("JWT_SECRET_KEY", "otra-clave")
	if _, err := ValidateJWTToken(token); err == nil {
		t.Error("un token firmado con otra clave debe rechazarse")
	}
}
