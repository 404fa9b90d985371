package sqldb

import (
	"strconv"
	"strings"
)

// queries holds the statements of one dialect.
type queries struct {
	selectRecord  string
	selectRecords string

	selectNotes    string
	selectAllNotes string

	selectOutputs    string
	selectAllOutputs string

	insertRecord string
	insertNote   string
	insertOutput string

	deleteNotes   string
	deleteOutputs string
	deleteRecord  string
}

const (
	recordColumns = `txid, state, height, received_at`

	noteColumns = `txid, pool, note_index, value, recipient, rseed, ` +
		`spent_by, pending_spent_by`

	outputColumns = `txid, output_index, value, pk_script, spent_by, ` +
		`pending_spent_by`
)

// newQueries builds the statements, using numbered placeholders when
// numbered is set.
func newQueries(numbered bool) queries {
	q := queries{
		selectRecord: `SELECT ` + recordColumns + ` FROM tx_records ` +
			`WHERE txid = ?`,
		selectRecords: `SELECT ` + recordColumns + ` FROM tx_records ` +
			`ORDER BY txid`,

		selectNotes: `SELECT ` + noteColumns + ` FROM shielded_notes ` +
			`WHERE txid = ? ORDER BY pool, note_index`,
		selectAllNotes: `SELECT ` + noteColumns + ` FROM ` +
			`shielded_notes ORDER BY txid, pool, note_index`,

		selectOutputs: `SELECT ` + outputColumns + ` FROM ` +
			`transparent_outputs WHERE txid = ? ORDER BY output_index`,
		selectAllOutputs: `SELECT ` + outputColumns + ` FROM ` +
			`transparent_outputs ORDER BY txid, output_index`,

		insertRecord: `INSERT INTO tx_records (` + recordColumns +
			`) VALUES (?, ?, ?, ?)`,
		insertNote: `INSERT INTO shielded_notes (` + noteColumns +
			`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		insertOutput: `INSERT INTO transparent_outputs (` +
			outputColumns + `) VALUES (?, ?, ?, ?, ?, ?)`,

		deleteNotes:   `DELETE FROM shielded_notes WHERE txid = ?`,
		deleteOutputs: `DELETE FROM transparent_outputs WHERE txid = ?`,
		deleteRecord:  `DELETE FROM tx_records WHERE txid = ?`,
	}

	if !numbered {
		return q
	}

	for _, stmt := range []*string{
		&q.selectRecord, &q.selectRecords, &q.selectNotes,
		&q.selectAllNotes, &q.selectOutputs, &q.selectAllOutputs,
		&q.insertRecord, &q.insertNote, &q.insertOutput,
		&q.deleteNotes, &q.deleteOutputs, &q.deleteRecord,
	} {
		*stmt = numberPlaceholders(*stmt)
	}

	return q
}

// numberPlaceholders rewrites every ? placeholder of stmt into the $n form.
func numberPlaceholders(stmt string) string {
	var (
		b strings.Builder
		n int
	)
	for _, c := range stmt {
		if c != '?' {
			b.WriteRune(c)
			continue
		}

		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}
