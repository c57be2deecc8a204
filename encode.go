package stockledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// DecodeRecords reads movement records from a JSONL stream: one flat
// JSON object per line, one record per row of the source sheet.
//
// Field order is preserved exactly as written, because the column
// order of the source sheet is the tie break for same-day movements.
// encoding/json's map decoding would destroy it, so objects are read
// token by token. filename is used in source ids and error messages.
func DecodeRecords(filename string, r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	i := 0
	for scanner.Scan() {
		i++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields, err := decodeOrderedObject(line)
		if err != nil {
			return nil, fmt.Errorf("format error in %q line %d: %w", filename, i, err)
		}
		records = append(records, Record{
			SourceID: fmt.Sprintf("%s#%d", filename, i),
			Fields:   fields,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", filename, err)
	}
	return records, nil
}

// decodeOrderedObject parses one flat JSON object keeping field order.
// Values must be scalars; a sheet row has no nesting.
func decodeOrderedObject(line string) ([]Field, error) {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object, got %v", tok)
	}

	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		var value string
		switch v := valTok.(type) {
		case string:
			value = v
		case json.Number:
			value = v.String()
		case bool:
			value = fmt.Sprintf("%t", v)
		case nil:
			value = ""
		default:
			return nil, fmt.Errorf("field %q: nested values are not supported", key)
		}
		fields = append(fields, Field{Name: key, Value: value})
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// DecodeSnapshot reads a physical-count snapshot from a single JSON
// document, extracting rows with JSONPath expressions. rowsPath selects
// the list of count rows; locPath and qtyPath select, within each row,
// the location label and the counted quantity. Location labels are
// canonicalized; rows for the same canonical location are summed.
func DecodeSnapshot(r io.Reader, canon *Canonicalizer, rowsPath, locPath, qtyPath string) (map[string]Quantity, error) {
	var doc interface{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot parse snapshot: %w", err)
	}

	rowsVal, err := jsonpath.Get(rowsPath, doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot rows path %q: %w", rowsPath, err)
	}
	rows, ok := rowsVal.([]interface{})
	if !ok {
		return nil, fmt.Errorf("snapshot rows path %q: expected a list, got %T", rowsPath, rowsVal)
	}

	snapshot := make(map[string]Quantity)
	for i, row := range rows {
		locVal, err := jsonpath.Get(locPath, row)
		if err != nil {
			return nil, fmt.Errorf("snapshot row %d: location path %q: %w", i, locPath, err)
		}
		qtyVal, err := jsonpath.Get(qtyPath, row)
		if err != nil {
			return nil, fmt.Errorf("snapshot row %d: quantity path %q: %w", i, qtyPath, err)
		}

		loc, ok := scalarString(locVal)
		if !ok {
			return nil, fmt.Errorf("snapshot row %d: location is not a scalar: %v", i, locVal)
		}
		qtyStr, ok := scalarString(qtyVal)
		if !ok {
			return nil, fmt.Errorf("snapshot row %d: quantity is not a scalar: %v", i, qtyVal)
		}
		qty, err := ParseQuantity(strings.TrimSpace(qtyStr))
		if err != nil {
			return nil, fmt.Errorf("snapshot row %d: quantity %q: %w", i, qtyStr, err)
		}

		canonical := canon.Location(loc)
		snapshot[canonical] = snapshot[canonical].Add(qty)
	}
	return snapshot, nil
}

// scalarString unwraps a jsonpath result into a string. Paths that
// match a list of one scalar are unwrapped, a common shape when the
// path uses a filter.
func scalarString(v interface{}) (string, bool) {
	if list, ok := v.([]interface{}); ok && len(list) == 1 {
		v = list[0]
	}
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	}
	return "", false
}

// DecodeSnapshotLines reads a snapshot in the strict JSONL form the
// engine itself writes: one {"location","qty"} object per line.
func DecodeSnapshotLines(filename string, r io.Reader, canon *Canonicalizer) (map[string]Quantity, error) {
	type jrow struct {
		Location string   `json:"location"`
		Qty      Quantity `json:"qty"`
	}

	snapshot := make(map[string]Quantity)
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row jrow
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("format error in %q line %d: %w", filename, i, err)
		}
		if row.Location == "" {
			return nil, fmt.Errorf("format error in %q line %d: missing location", filename, i)
		}
		canonical := canon.Location(row.Location)
		snapshot[canonical] = snapshot[canonical].Add(row.Qty)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", filename, err)
	}
	return snapshot, nil
}

// EncodeTransactions writes transactions as JSONL, one per line.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	return encodeLines(w, len(txs), func(i int) interface{} { return txs[i] })
}

// DecodeTransactions reads back a transaction file written by
// EncodeTransactions, one object per line. Direction and kind are
// checked against the known vocabulary, so a hand-edited file cannot
// smuggle in an unknown transaction type.
func DecodeTransactions(filename string, r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	i := 0
	for scanner.Scan() {
		i++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal([]byte(line), &tx); err != nil {
			return nil, fmt.Errorf("format error in %q line %d: %w", filename, i, err)
		}
		if _, err := ParseDirection(string(tx.Direction)); err != nil {
			return nil, fmt.Errorf("format error in %q line %d: %w", filename, i, err)
		}
		if _, err := ParseKind(string(tx.Kind)); err != nil {
			return nil, fmt.Errorf("format error in %q line %d: %w", filename, i, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", filename, err)
	}
	return txs, nil
}

// EncodeLedger writes ledger rows as JSONL, one per line.
func EncodeLedger(w io.Writer, rows []LedgerRow) error {
	return encodeLines(w, len(rows), func(i int) interface{} { return rows[i] })
}

func encodeLines(w io.Writer, n int, at func(int) interface{}) error {
	enc := json.NewEncoder(w)
	for i := 0; i < n; i++ {
		if err := enc.Encode(at(i)); err != nil {
			return err
		}
	}
	return nil
}
