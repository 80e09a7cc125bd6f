package snmp

import "context"

const defaultChunkSize = 10

// IndexValue is one row's column value from a column walk, with its
// table-row index recovered from the suffix of the returned OID relative
// to the column's base OID.
type IndexValue struct {
	Index OID
	Value *TypedValue
}

// TableSizeEstimate is estimate_table_size's result.
type TableSizeEstimate struct {
	Rows       int
	Confidence Confidence
}

// Confidence reports whether a TableSizeEstimate came from a complete
// walk or from a partial one.
type Confidence int

const (
	Estimated Confidence = iota
	Exact
)

// Walker walks OID subtrees against a Manager, choosing GetNext or
// GetBulk per the manager's configured SNMP version and adapting its
// bulk-request size to the agent's responses.
type Walker struct {
	manager      Manager
	version      SNMPVersion
	chunkSize    int
	maxChunkSize int
}

// versionedManager is implemented (via embedding) by every Manager this
// package constructs; Walker needs the configured version and maximum
// repetitions, which the public Manager interface doesn't expose.
type versionedManager interface {
	walkerConfig() (SNMPVersion, int)
}

func (m *managerImpl) walkerConfig() (SNMPVersion, int) {
	return m.config.version, m.config.maxRepetitions
}

// NewWalker builds a Walker over m. m must be a Manager returned by this
// package's factories (Walker needs the version/maxRepetitions the
// Manager interface doesn't expose).
func NewWalker(m Manager) (*Walker, error) {
	vm, ok := m.(versionedManager)
	if !ok {
		return nil, newManagerErr(ErrBadConfig, "Walker requires a Manager created by this package", nil)
	}
	version, max := vm.walkerConfig()
	if max <= 0 {
		max = defaultChunkSize
	}
	chunk := defaultChunkSize
	if chunk > max {
		chunk = max
	}
	return &Walker{manager: m, version: version, chunkSize: chunk, maxChunkSize: max}, nil
}

// WalkSubtree walks every OID under base, in lexicographic order, calling
// visit for each. Walking stops early (without error) if visit returns
// false.
func (w *Walker) WalkSubtree(ctx context.Context, base OID, visit func(OID, *TypedValue) bool) error {
	cursor := base.Clone()
	for {
		batch, done, err := w.nextBatch(ctx, base, cursor)
		if err != nil {
			return err
		}
		for _, vb := range batch {
			if !visit(vb.OID, vb.TypedValue) {
				return nil
			}
			cursor = vb.OID
		}
		if done {
			return nil
		}
	}
}

// WalkTable collects every varbind under base into a slice, in
// lexicographic order.
func (w *Walker) WalkTable(ctx context.Context, base OID) ([]Varbind, error) {
	var out []Varbind
	err := w.WalkSubtree(ctx, base, func(oid OID, tv *TypedValue) bool {
		out = append(out, Varbind{OID: oid.Clone(), TypedValue: tv})
		return true
	})
	return out, err
}

// WalkColumn walks the column rooted at columnBase, returning one
// IndexValue per row with the row index extracted from the OID suffix.
func (w *Walker) WalkColumn(ctx context.Context, columnBase OID) ([]IndexValue, error) {
	var out []IndexValue
	err := w.WalkSubtree(ctx, columnBase, func(oid OID, tv *TypedValue) bool {
		idx := oid.Suffix(columnBase)
		if idx == nil {
			return true
		}
		out = append(out, IndexValue{Index: idx, Value: tv})
		return true
	})
	return out, err
}

// EstimateTableSize walks the first sampleRows rows of columnBase. If the
// walk completes within sampleRows, the result is Exact. Otherwise the
// result is Estimated and Rows, computed from the span and average gap of
// the sampled first index sub-identifiers, equals the number of rows
// sampled; rows beyond the sample are not counted.
func (w *Walker) EstimateTableSize(ctx context.Context, columnBase OID, sampleRows int) (TableSizeEstimate, error) {
	if sampleRows <= 0 {
		sampleRows = 10
	}

	var rows []IndexValue
	complete := true
	err := w.WalkSubtree(ctx, columnBase, func(oid OID, tv *TypedValue) bool {
		idx := oid.Suffix(columnBase)
		if idx != nil {
			rows = append(rows, IndexValue{Index: idx, Value: tv})
		}
		if len(rows) >= sampleRows {
			complete = false
			return false
		}
		return true
	})
	if err != nil {
		return TableSizeEstimate{}, err
	}

	if complete {
		return TableSizeEstimate{Rows: len(rows), Confidence: Exact}, nil
	}

	// Divide the observed index span by the average gap between sampled
	// indices; this gives back the sampled row count.
	if len(rows) < 2 || len(rows[0].Index) == 0 {
		return TableSizeEstimate{Rows: len(rows), Confidence: Estimated}, nil
	}
	first := rows[0].Index[0]
	last := rows[len(rows)-1].Index[0]
	span := last - first
	if span == 0 {
		return TableSizeEstimate{Rows: len(rows), Confidence: Estimated}, nil
	}
	avgGap := float64(span) / float64(len(rows)-1)
	estimated := int(float64(last-first)/avgGap) + 1
	if estimated < len(rows) {
		estimated = len(rows)
	}
	return TableSizeEstimate{Rows: estimated, Confidence: Estimated}, nil
}

// StreamSubtree is WalkSubtree's streaming variant: chunks of varbinds
// are sent to out as they arrive, without ever holding the whole subtree
// in memory. out is closed when the walk finishes or ctx is cancelled.
func (w *Walker) StreamSubtree(ctx context.Context, base OID) <-chan []Varbind {
	out := make(chan []Varbind)
	go func() {
		defer close(out)
		cursor := base.Clone()
		for {
			batch, done, err := w.nextBatch(ctx, base, cursor)
			if err != nil || len(batch) == 0 {
				return
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
			cursor = batch[len(batch)-1].OID
			if done {
				return
			}
		}
	}()
	return out
}

// nextBatch fetches the next chunk of in-subtree varbinds starting after
// cursor, returning done=true when the walk has reached the end of the
// subtree or end-of-MIB.
func (w *Walker) nextBatch(ctx context.Context, base, cursor OID) (batch []Varbind, done bool, err error) {
	if w.version == SNMPV1 {
		return w.nextBatchGetNext(ctx, base, cursor)
	}
	return w.nextBatchGetBulk(ctx, base, cursor)
}

func (w *Walker) nextBatchGetNext(ctx context.Context, base, cursor OID) ([]Varbind, bool, error) {
	pdu, err := w.manager.GetNext(ctx, []string{cursor.String()})
	if err != nil {
		return nil, true, err
	}
	if len(pdu.Varbinds) != 1 {
		return nil, true, nil
	}
	vb := pdu.Varbinds[0]
	if vb.TypedValue.Type == TypeEndOfMibView || !vb.OID.IsDescendantOf(base) {
		return nil, true, nil
	}
	return []Varbind{vb}, false, nil
}

func (w *Walker) nextBatchGetBulk(ctx context.Context, base, cursor OID) ([]Varbind, bool, error) {
	pdu, err := w.manager.GetBulk(ctx, []string{cursor.String()}, 0, w.chunkSize)
	if err != nil {
		if status, ok := errorStatusFrom(err); ok && status == TooBig {
			w.shrinkChunk()
			return w.nextBatchGetBulk(ctx, base, cursor)
		}
		return nil, true, err
	}
	w.growChunk()

	if len(pdu.Varbinds) == 0 {
		return nil, true, nil
	}

	var batch []Varbind
	for _, vb := range pdu.Varbinds {
		if vb.TypedValue.Type == TypeEndOfMibView || !vb.OID.IsDescendantOf(base) {
			return batch, true, nil
		}
		batch = append(batch, vb)
	}
	return batch, false, nil
}

func (w *Walker) shrinkChunk() {
	w.chunkSize /= 2
	if w.chunkSize < 1 {
		w.chunkSize = 1
	}
}

func (w *Walker) growChunk() {
	if w.chunkSize >= w.maxChunkSize {
		return
	}
	w.chunkSize *= 2
	if w.chunkSize > w.maxChunkSize {
		w.chunkSize = w.maxChunkSize
	}
}

func errorStatusFrom(err error) (ErrorStatus, bool) {
	var me *ManagerError
	if e, ok := err.(*ManagerError); ok {
		me = e
	} else {
		return 0, false
	}
	if me.Atom != ErrAgent {
		return 0, false
	}
	return me.Status, true
}
