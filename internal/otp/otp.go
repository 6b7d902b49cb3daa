package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/skip2/go-qrcode"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// GenerateCode tire un code à 6 chiffres uniformément dans [100000, 999999]
// via crypto/rand — un PRNG générique rendrait les codes prédictibles.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("génération du code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// HashCode retourne le SHA-256 hex de la forme décimale canonique du code.
// C'est la seule forme jamais persistée, le clair ne touche pas le store.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// CodeQR encode le code en PNG base64 prêt pour <img src="...">, pour que
// le vendeur scanne au lieu de recopier les chiffres.
func CodeQR(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
