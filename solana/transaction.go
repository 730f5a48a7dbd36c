package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"sort"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	SignatureSize = ed25519.SignatureSize
	HashSize      = sha256.Size
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

type Signature [SignatureSize]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

type Blockhash [HashSize]byte

func (b Blockhash) String() string {
	return base58.Encode(b[:])
}

// Header describes how the account list of a Message is partitioned.
//
// Accounts requiring signatures come first, with the read-only ones at the
// end of that section. Read-only accounts that don't need signatures are at
// the end of the list.
type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into a transaction paid for by payer.
//
// Instructions keep their order. The account list is deduplicated, with the
// payer first. Signature slots are allocated, but left empty.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	accounts := []AccountMeta{
		{
			PublicKey:  payer,
			IsSigner:   true,
			IsWritable: true,
			isPayer:    true,
		},
	}

	for _, i := range instructions {
		accounts = append(accounts, i.Accounts...)
		accounts = append(accounts, NewReadonlyAccountMeta(i.Program, false))
	}

	accounts = filterUnique(accounts)
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].sortRank() < accounts[j].sortRank()
	})

	var m Message
	for _, account := range accounts {
		m.Accounts = append(m.Accounts, account.PublicKey)

		if account.IsSigner {
			m.Header.NumSignatures++
			if !account.IsWritable {
				m.Header.NumReadonlySigned++
			}
		} else if !account.IsWritable {
			m.Header.NumReadOnly++
		}
	}

	for _, i := range instructions {
		c := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, i.Program)),
			Accounts:     make([]byte, len(i.Accounts)),
			Data:         i.Data,
		}
		for j := range i.Accounts {
			c.Accounts[j] = byte(indexOf(m.Accounts, i.Accounts[j].PublicKey))
		}

		m.Instructions = append(m.Instructions, c)
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// SetBlockhash sets the recent blockhash of the transaction.
//
// Any existing signatures are invalidated by this, and are cleared.
func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
	for i := range t.Signatures {
		t.Signatures[i] = Signature{}
	}
}

// Signature returns the transaction id, which is the fee payer's signature.
func (t Transaction) Signature() Signature {
	if len(t.Signatures) == 0 {
		return Signature{}
	}
	return t.Signatures[0]
}

// Sign signs the transaction with each of the provided keys.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	msg := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)
		var sig Signature
		copy(sig[:], ed25519.Sign(s, msg))

		if err := t.AddSignature(pub, sig); err != nil {
			return err
		}
	}

	return nil
}

// AddSignature places a signature produced elsewhere into the slot of pub.
func (t *Transaction) AddSignature(pub ed25519.PublicKey, sig Signature) error {
	index := indexOf(t.Message.Accounts, pub)
	if index < 0 || index >= int(t.Message.Header.NumSignatures) {
		return errors.Errorf("signing account %s is not in the transaction", base58.Encode(pub))
	}

	if len(t.Signatures) != int(t.Message.Header.NumSignatures) {
		sigs := make([]Signature, t.Message.Header.NumSignatures)
		copy(sigs, t.Signatures)
		t.Signatures = sigs
	}

	t.Signatures[index] = sig
	return nil
}

// VerifySignature reports whether sig is a valid signature by pub over the message.
func (t Transaction) VerifySignature(pub ed25519.PublicKey, sig Signature) bool {
	return ed25519.Verify(pub, t.Message.Marshal(), sig[:])
}

func (m Message) Marshal() []byte {
	b := []byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly}

	b = appendShortVecLength(b, len(m.Accounts))
	for _, a := range m.Accounts {
		b = append(b, a...)
	}

	b = append(b, m.RecentBlockhash[:]...)

	b = appendShortVecLength(b, len(m.Instructions))
	for _, i := range m.Instructions {
		b = append(b, i.ProgramIndex)
		b = appendShortVecLength(b, len(i.Accounts))
		b = append(b, i.Accounts...)
		b = appendShortVecLength(b, len(i.Data))
		b = append(b, i.Data...)
	}

	return b
}

func (t Transaction) Marshal() []byte {
	b := appendShortVecLength(nil, len(t.Signatures))
	for _, s := range t.Signatures {
		b = append(b, s[:]...)
	}

	return append(b, t.Message.Marshal()...)
}

func (t *Transaction) Unmarshal(b []byte) error {
	r := reader{b: b}

	n, err := r.shortVec()
	if err != nil {
		return errors.Wrap(err, "failed to read signature count")
	}

	t.Signatures = make([]Signature, n)
	for i := range t.Signatures {
		sig, err := r.next(SignatureSize)
		if err != nil {
			return errors.Wrapf(err, "failed to read signature %d", i)
		}
		copy(t.Signatures[i][:], sig)
	}

	if err := t.Message.unmarshal(&r); err != nil {
		return err
	}
	if r.remaining() > 0 {
		return errors.Errorf("trailing bytes in transaction: %d", r.remaining())
	}

	return nil
}

func (m *Message) unmarshal(r *reader) error {
	header, err := r.next(3)
	if err != nil {
		return errors.Wrap(err, "failed to read message header")
	}
	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	n, err := r.shortVec()
	if err != nil {
		return errors.Wrap(err, "failed to read account count")
	}

	m.Accounts = make([]ed25519.PublicKey, n)
	for i := range m.Accounts {
		key, err := r.next(ed25519.PublicKeySize)
		if err != nil {
			return errors.Wrapf(err, "failed to read account %d", i)
		}
		m.Accounts[i] = append(ed25519.PublicKey(nil), key...)
	}

	bh, err := r.next(HashSize)
	if err != nil {
		return errors.Wrap(err, "failed to read blockhash")
	}
	copy(m.RecentBlockhash[:], bh)

	n, err = r.shortVec()
	if err != nil {
		return errors.Wrap(err, "failed to read instruction count")
	}

	m.Instructions = make([]CompiledInstruction, n)
	for i := range m.Instructions {
		program, err := r.next(1)
		if err != nil {
			return errors.Wrapf(err, "failed to read program index of instruction %d", i)
		}
		if int(program[0]) >= len(m.Accounts) {
			return errors.Errorf("program index out of range in instruction %d", i)
		}

		accountCount, err := r.shortVec()
		if err != nil {
			return errors.Wrapf(err, "failed to read account count of instruction %d", i)
		}
		accounts, err := r.next(accountCount)
		if err != nil {
			return errors.Wrapf(err, "failed to read accounts of instruction %d", i)
		}
		for _, a := range accounts {
			if int(a) >= len(m.Accounts) {
				return errors.Errorf("account index out of range in instruction %d", i)
			}
		}

		dataLen, err := r.shortVec()
		if err != nil {
			return errors.Wrapf(err, "failed to read data length of instruction %d", i)
		}
		data, err := r.next(dataLen)
		if err != nil {
			return errors.Wrapf(err, "failed to read data of instruction %d", i)
		}

		m.Instructions[i] = CompiledInstruction{
			ProgramIndex: program[0],
			Accounts:     append([]byte{}, accounts...),
			Data:         append([]byte{}, data...),
		}
	}

	return nil
}

type reader struct {
	b      []byte
	offset int
}

func (r *reader) next(n int) ([]byte, error) {
	if r.offset+n > len(r.b) {
		return nil, errors.Errorf("unexpected end of data (need %d, have %d)", n, len(r.b)-r.offset)
	}

	v := r.b[r.offset : r.offset+n]
	r.offset += n
	return v, nil
}

func (r *reader) shortVec() (int, error) {
	n, size, err := readShortVecLength(r.b[r.offset:])
	if err != nil {
		return 0, err
	}
	r.offset += size
	return n, nil
}

func (r *reader) remaining() int {
	return len(r.b) - r.offset
}

// filterUnique merges duplicate accounts, keeping the first position and the
// union of their permissions.
func filterUnique(accounts []AccountMeta) []AccountMeta {
	filtered := make([]AccountMeta, 0, len(accounts))
	for _, a := range accounts {
		existing := -1
		for i := range filtered {
			if bytes.Equal(filtered[i].PublicKey, a.PublicKey) {
				existing = i
				break
			}
		}

		if existing < 0 {
			filtered = append(filtered, a)
			continue
		}

		filtered[existing].IsSigner = filtered[existing].IsSigner || a.IsSigner
		filtered[existing].IsWritable = filtered[existing].IsWritable || a.IsWritable
		filtered[existing].isPayer = filtered[existing].isPayer || a.isPayer
	}

	return filtered
}

func indexOf(keys []ed25519.PublicKey, key ed25519.PublicKey) int {
	for i := range keys {
		if bytes.Equal(keys[i], key) {
			return i
		}
	}
	return -1
}
