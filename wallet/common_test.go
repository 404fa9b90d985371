package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zecwallet/zecwallet/pkg/zatoshi"
	"github.com/zecwallet/zecwallet/txrecords"
)

var (
	errDBMock = errors.New("db error")

	bothPools = []txrecords.ShieldedProtocol{
		txrecords.Sapling, txrecords.Orchard,
	}
)

// testTxID returns a transaction id whose first byte is b, so ids sort by b.
func testTxID(b byte) chainhash.Hash {
	return chainhash.Hash{b, 0x5a}
}

func zat(v uint64) zatoshi.Amount {
	return zatoshi.MustFromUint64(v)
}

// recordBuilder builds transaction records for tests.
type recordBuilder struct {
	rec *txrecords.TransactionRecord
}

func newRecord(b byte) *recordBuilder {
	return &recordBuilder{rec: &txrecords.TransactionRecord{
		TxID:   testTxID(b),
		Status: txrecords.Unconfirmed(),
	}}
}

func (rb *recordBuilder) confirmedAt(h txrecords.BlockHeight) *recordBuilder {
	rb.rec.Status = txrecords.ConfirmedAt(h)
	return rb
}

func (rb *recordBuilder) conflicted() *recordBuilder {
	rb.rec.Status = txrecords.Conflicted()
	return rb
}

func (rb *recordBuilder) sapling(values ...uint64) *recordBuilder {
	for _, v := range values {
		rb.rec.SaplingNotes = append(rb.rec.SaplingNotes, testNote(v))
	}

	return rb
}

func (rb *recordBuilder) orchard(values ...uint64) *recordBuilder {
	for _, v := range values {
		rb.rec.OrchardNotes = append(rb.rec.OrchardNotes, testNote(v))
	}

	return rb
}

func (rb *recordBuilder) transparent(index uint32,
	value uint64) *recordBuilder {

	rb.rec.TransparentOutputs = append(
		rb.rec.TransparentOutputs, txrecords.TransparentOutput{
			Index:    index,
			Value:    value,
			PkScript: []byte{0x76, 0xa9, 0x14, byte(index)},
		},
	)

	return rb
}

func (rb *recordBuilder) build() *txrecords.TransactionRecord {
	return rb.rec
}

func testNote(value uint64) txrecords.ShieldedNote {
	return txrecords.ShieldedNote{
		Value:     value,
		Recipient: []byte{0x0c, byte(value)},
		Rseed:     [32]byte{byte(value >> 8), byte(value)},
	}
}

// newTestStore returns an in-memory store holding recs.
func newTestStore(t *testing.T,
	recs ...*txrecords.TransactionRecord) *txrecords.Store {

	t.Helper()

	store := txrecords.NewStore()
	err := store.Update(
		context.Background(), func(w txrecords.RecordWriter) error {
			for _, rec := range recs {
				if err := w.InsertRecord(rec); err != nil {
					return err
				}
			}

			return nil
		},
	)
	require.NoError(t, err)

	return store
}

// newTestSource returns an InputSource with the default config over an
// in-memory store holding recs.
func newTestSource(t *testing.T,
	recs ...*txrecords.TransactionRecord) *InputSource {

	t.Helper()

	source, err := NewInputSource(DefaultConfig(newTestStore(t, recs...)))
	require.NoError(t, err)

	return source
}

func noteIDs(notes []txrecords.ReceivedNote) []txrecords.NoteID {
	ids := make([]txrecords.NoteID, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}

	return ids
}

func noteValues(notes []txrecords.ReceivedNote) []uint64 {
	values := make([]uint64, 0, len(notes))
	for _, n := range notes {
		values = append(values, n.Note.Value)
	}

	return values
}

func noExclusions() fn.Set[txrecords.NoteID] {
	return fn.NewSet[txrecords.NoteID]()
}

func noOutPoints() fn.Set[wire.OutPoint] {
	return fn.NewSet[wire.OutPoint]()
}

// mockRecordViewer is a mock implementation of the RecordViewer interface
// that hands its reader to every View call.
type mockRecordViewer struct {
	mock.Mock

	reader *mockRecordReader
}

// A compile-time assertion to ensure that mockRecordViewer implements the
// RecordViewer interface.
var _ txrecords.RecordViewer = (*mockRecordViewer)(nil)

func newMockRecordViewer() *mockRecordViewer {
	return &mockRecordViewer{reader: &mockRecordReader{}}
}

func (m *mockRecordViewer) View(ctx context.Context,
	f func(r txrecords.RecordReader) error) error {

	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}

	return f(m.reader)
}

// mockRecordReader is a mock implementation of the RecordReader interface.
type mockRecordReader struct {
	mock.Mock
}

// A compile-time assertion to ensure that mockRecordReader implements the
// RecordReader interface.
var _ txrecords.RecordReader = (*mockRecordReader)(nil)

// ForEachRecord calls f for each of the mocked records.
func (m *mockRecordReader) ForEachRecord(
	f func(rec *txrecords.TransactionRecord) error) error {

	args := m.Called()

	recs, _ := args.Get(0).([]*txrecords.TransactionRecord)
	for _, rec := range recs {
		if err := f(rec); err != nil {
			return err
		}
	}

	return args.Error(1)
}

func (m *mockRecordReader) FetchRecord(txid chainhash.Hash) (
	fn.Option[*txrecords.TransactionRecord], error) {

	args := m.Called(txid)

	return args.Get(0).(fn.Option[*txrecords.TransactionRecord]),
		args.Error(1)
}

func (m *mockRecordReader) FetchNote(
	id txrecords.NoteID) (fn.Option[txrecords.ShieldedNote], error) {

	args := m.Called(id)

	return args.Get(0).(fn.Option[txrecords.ShieldedNote]), args.Error(1)
}

func (m *mockRecordReader) UnspentNotes(txid chainhash.Hash,
	pool txrecords.ShieldedProtocol) ([]txrecords.ReceivedNote, error) {

	args := m.Called(txid, pool)
	notes, _ := args.Get(0).([]txrecords.ReceivedNote)

	return notes, args.Error(1)
}
