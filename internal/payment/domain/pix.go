package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrInvalidPix = errors.New("invalid pix charge")

const (
	pixGUI         = "br.gov.bcb.pix"
	maxNameLen     = 25
	maxCityLen     = 15
	maxTxIDLen     = 25
	currencyBRL    = "986"
	countryBrazil  = "BR"
	categoryNone   = "0000"
	crcFieldPrefix = "6304"
)

// PixParams describes a static BR Code ("copia e cola") charge.
type PixParams struct {
	Key          string
	MerchantName string
	MerchantCity string
	Amount       decimal.Decimal
	TxID         string
}

func field(id, value string) (string, error) {
	if len(value) > 99 {
		return "", fmt.Errorf("%w: field %s longer than 99 bytes", ErrInvalidPix, id)
	}
	return fmt.Sprintf("%s%02d%s", id, len(value), value), nil
}

// BRCode renders the EMV payload, CRC included.
func BRCode(p PixParams) (string, error) {
	if strings.TrimSpace(p.Key) == "" {
		return "", fmt.Errorf("%w: missing key", ErrInvalidPix)
	}
	if !p.Amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be positive", ErrInvalidPix)
	}
	txid := TxID(p.TxID)
	if txid == "" {
		txid = "***"
	}

	gui, err := field("00", pixGUI)
	if err != nil {
		return "", err
	}
	key, err := field("01", p.Key)
	if err != nil {
		return "", err
	}
	account, err := field("26", gui+key)
	if err != nil {
		return "", err
	}
	ref, err := field("05", txid)
	if err != nil {
		return "", err
	}
	additional, err := field("62", ref)
	if err != nil {
		return "", err
	}

	parts := []struct{ id, value string }{
		{"00", "01"},
		{"52", categoryNone},
		{"53", currencyBRL},
		{"54", p.Amount.StringFixed(2)},
		{"58", countryBrazil},
		{"59", truncate(Normalize(p.MerchantName), maxNameLen)},
		{"60", truncate(Normalize(p.MerchantCity), maxCityLen)},
	}

	var b strings.Builder
	for i, part := range parts {
		f, err := field(part.id, part.value)
		if err != nil {
			return "", err
		}
		b.WriteString(f)
		if i == 0 {
			b.WriteString(account)
		}
	}
	b.WriteString(additional)
	b.WriteString(crcFieldPrefix)
	fmt.Fprintf(&b, "%04X", CRC16([]byte(b.String())))
	return b.String(), nil
}

// CRC16 is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF).
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, c := range data {
		crc ^= uint16(c) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// ValidCRC checks the trailing checksum of a BR Code payload.
func ValidCRC(payload string) bool {
	if len(payload) < 8 || payload[len(payload)-8:len(payload)-4] != crcFieldPrefix {
		return false
	}
	body := payload[:len(payload)-4]
	return fmt.Sprintf("%04X", CRC16([]byte(body))) == payload[len(payload)-4:]
}

// TxID keeps the alphanumerics of ref, which is all a txid may carry.
func TxID(ref string) string {
	var b strings.Builder
	for _, r := range ref {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return truncate(b.String(), maxTxIDLen)
}

var accents = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "ê", "e", "è", "e",
	"í", "i", "ì", "i", "î", "i",
	"ó", "o", "ô", "o", "õ", "o", "ò", "o", "ö", "o",
	"ú", "u", "ù", "u", "ü", "u",
	"ç", "c", "ñ", "n",
	"Á", "A", "À", "A", "Â", "A", "Ã", "A", "Ä", "A",
	"É", "E", "Ê", "E", "È", "E",
	"Í", "I", "Ì", "I", "Î", "I",
	"Ó", "O", "Ô", "O", "Õ", "O", "Ò", "O", "Ö", "O",
	"Ú", "U", "Ù", "U", "Ü", "U",
	"Ç", "C", "Ñ", "N",
)

// Normalize maps a merchant name or city to the ASCII subset BR Codes
// allow, upper-cased.
func Normalize(s string) string {
	s = accents.Replace(s)
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsPrint(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
