package record

import "fmt"

// Container wraps an ordered sequence of Records (C3): a dataset's rows
// in memory, with the filter/slice/project/order helpers the executors
// build on.
type Container struct {
	rows []Record
}

// NewContainer wraps rows without copying.
func NewContainer(rows []Record) *Container {
	return &Container{rows: rows}
}

// Len returns the number of rows.
func (c *Container) Len() int { return len(c.rows) }

// At returns the row at index i.
func (c *Container) At(i int) (Record, error) {
	if i < 0 || i >= len(c.rows) {
		return Record{}, fmt.Errorf("record: index %d out of range [0,%d)", i, len(c.rows))
	}
	return c.rows[i], nil
}

// Head returns the prefix of length min(n, Len()).
func (c *Container) Head(n int) *Container {
	if n > len(c.rows) {
		n = len(c.rows)
	}
	if n < 0 {
		n = 0
	}
	return NewContainer(append([]Record(nil), c.rows[:n]...))
}

// Last returns the final row; fails on an empty container.
func (c *Container) Last() (Record, error) {
	if len(c.rows) == 0 {
		return Record{}, fmt.Errorf("record: Last() on empty container")
	}
	return c.rows[len(c.rows)-1], nil
}

// Where filters rows by a single (field, op, value) predicate, using the
// same comparison rules as §4.2. This is the legacy single-predicate
// filter path (§4.3); executors needing WHERE's AND/OR composition use
// pkg/predicate directly instead.
func (c *Container) Where(field string, op Op, value string) (*Container, error) {
	var out []Record
	for _, row := range c.rows {
		resolved, ok := row.Resolve(field)
		if !ok || resolved.IsNull() {
			continue
		}
		match, err := Compare(resolved, op, value)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, row)
		}
	}
	return NewContainer(out), nil
}

// Get projects the value at key from every row, skipping rows where key
// is absent.
func (c *Container) Get(key string) []Record {
	var out []Record
	for _, row := range c.rows {
		if v, ok := row.Resolve(key); ok {
			out = append(out, v)
		}
	}
	return out
}

// Partition splits the container in one pass into rows matching
// (field, op, value) and the rest, using the same comparison rules as
// Where. storage.DatasetFile.Remove uses this to find the matched rows to
// drop and the unmatched rows to keep without resolving and comparing
// each row twice.
func (c *Container) Partition(field string, op Op, value string) (matched, rest *Container, err error) {
	var yes, no []Record
	for _, row := range c.rows {
		resolved, ok := row.Resolve(field)
		if !ok || resolved.IsNull() {
			no = append(no, row)
			continue
		}
		match, err := Compare(resolved, op, value)
		if err != nil {
			return nil, nil, err
		}
		if match {
			yes = append(yes, row)
		} else {
			no = append(no, row)
		}
	}
	return NewContainer(yes), NewContainer(no), nil
}

// Raw returns the underlying rows, for serialisation.
func (c *Container) Raw() []Record {
	return c.rows
}
