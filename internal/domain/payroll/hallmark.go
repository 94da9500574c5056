package payroll

import (
	"crypto/sha256"
	"encoding/base32"
	"strings"
)

const hallmarkPrefix = "ORB"

var hallmarkEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// HallmarkSerial derives the verification serial for a record. Deterministic
// in tenant and record id so re-emission never mints a new serial; uniqueness
// is enforced by the store's constraint, and a collision there is fatal.
func HallmarkSerial(tenantID, recordID string) string {
	sum := sha256.Sum256([]byte(tenantID + ":" + recordID))
	encoded := hallmarkEncoding.EncodeToString(sum[:10])
	return hallmarkPrefix + "-" + encoded[:4] + "-" + encoded[4:8] + "-" + encoded[8:12] + "-" + encoded[12:16]
}

// VerificationURL builds the public lookup reference encoded into the QR
// hallmark. The lookup service renders the same figures back from the serial;
// the emitter only constructs the reference.
func VerificationURL(baseURL, serial string) string {
	return strings.TrimRight(baseURL, "/") + "/verify/" + serial
}
