package campaign

import (
	"bytes"
	"crypto/ed25519"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
)

// Record is the campaign state stored in an account owned by the program.
//
// Layout (borsh):
//   (32)  [u8; 32]: admin
//   (4+n)   string: name
//   (4+n)   string: description
//   (4+n)   string: image_link
//   (8)        u64: amount_donated
type Record struct {
	Admin         [ed25519.PublicKeySize]byte
	Name          string
	Description   string
	ImageLink     string
	AmountDonated uint64
}

// NewRecord returns a Record for a new campaign. Nothing has been donated to
// a new campaign.
func NewRecord(admin ed25519.PublicKey, name, description, imageLink string) Record {
	r := Record{
		Name:        name,
		Description: description,
		ImageLink:   imageLink,
	}
	copy(r.Admin[:], admin)
	return r
}

// AdminKey returns the campaign admin as a public key.
func (r Record) AdminKey() ed25519.PublicKey {
	k := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(k, r.Admin[:])
	return k
}

// Size returns the number of bytes in the marshaled record.
func (r Record) Size() int {
	return ed25519.PublicKeySize + 4 + len(r.Name) + 4 + len(r.Description) + 4 + len(r.ImageLink) + 8
}

func (r Record) Marshal() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, r.Size()))
	if err := bin.NewBorshEncoder(buf).Encode(r); err != nil {
		return nil, errors.Wrap(err, "failed to encode campaign record")
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes a record from b, which must hold exactly one record.
func (r *Record) Unmarshal(b []byte) error {
	if len(b) < ed25519.PublicKeySize+3*4+8 {
		return errors.Errorf("invalid campaign record size: %d", len(b))
	}

	var decoded Record
	dec := bin.NewBorshDecoder(b)
	if err := dec.Decode(&decoded); err != nil {
		return errors.Wrap(err, "failed to decode campaign record")
	}
	if n := dec.Remaining(); n != 0 {
		return errors.Errorf("%d trailing bytes after campaign record", n)
	}

	*r = decoded
	return nil
}

// WithdrawRequest is the payload of a withdraw instruction.
type WithdrawRequest struct {
	Amount uint64
}

func (w WithdrawRequest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(w); err != nil {
		return nil, errors.Wrap(err, "failed to encode withdraw request")
	}

	return buf.Bytes(), nil
}
