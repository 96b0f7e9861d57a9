package outbox

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"crossbook/infra/sequence"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrNotFound = errors.New("outbox: record not found")
	ErrClosed   = errors.New("outbox: closed")
	errCorrupt  = errors.New("outbox: corrupt record")
)

// -------------------- Record --------------------

// Record is one pending trade-tape event.
type Record struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

const headerSize = 1 + 4 + 8

// binary encoding: [state:1][retries:4][lastAttempt:8][payload...]
func encodeRecord(r Record) []byte {
	buf := make([]byte, headerSize+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[headerSize:], r.Payload)
	return buf
}

func decodeRecord(seq uint64, b []byte) (Record, error) {
	if len(b) < headerSize {
		return Record{}, errors.Wrapf(errCorrupt, "seq %d: %d bytes", seq, len(b))
	}
	payload := make([]byte, len(b)-headerSize)
	copy(payload, b[headerSize:])
	return Record{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     payload,
	}, nil
}

// -------------------- Outbox --------------------

// Outbox is a pebble-backed queue of match events awaiting delivery.
// Records are keyed by a monotonically increasing sequence that survives
// restarts.
type Outbox struct {
	db  *pebble.DB
	seq *sequence.Sequencer

	mu     sync.Mutex
	closed bool
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "outbox: open %s", dir)
	}

	last, err := lastSeq(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Outbox{db: db, seq: sequence.New(last)}, nil
}

func (o *Outbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	return o.db.Close()
}

// LastSeq returns the highest sequence assigned so far.
func (o *Outbox) LastSeq() uint64 {
	return o.seq.Current()
}

// -------------------- API --------------------

// Append stores payloads as NEW records in one synced batch and returns
// their sequence numbers in order.
func (o *Outbox) Append(payloads ...[]byte) ([]uint64, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil, ErrClosed
	}

	start := o.seq.Current()
	b := o.db.NewBatch()
	defer b.Close()

	seqs := make([]uint64, len(payloads))
	for i, p := range payloads {
		seqs[i] = start + uint64(i) + 1
		if err := b.Set(keyFor(seqs[i]), encodeRecord(Record{State: StateNew, Payload: p}), nil); err != nil {
			return nil, errors.Wrap(err, "outbox: stage record")
		}
	}
	if err := b.Set([]byte(lastSeqKey), encodeSeq(seqs[len(seqs)-1]), nil); err != nil {
		return nil, errors.Wrap(err, "outbox: stage high-water mark")
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return nil, errors.Wrap(err, "outbox: commit batch")
	}

	o.seq.AdvanceTo(seqs[len(seqs)-1])
	return seqs, nil
}

// Get returns the current record for seq.
func (o *Outbox) Get(seq uint64) (Record, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, errors.Wrapf(ErrNotFound, "seq %d", seq)
	}
	if err != nil {
		return Record{}, errors.Wrapf(err, "outbox: get %d", seq)
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

func (o *Outbox) MarkSent(seq uint64) error {
	return o.update(seq, func(r *Record) { r.State = StateSent })
}

func (o *Outbox) MarkAcked(seq uint64) error {
	return o.update(seq, func(r *Record) { r.State = StateAcked })
}

// MarkFailed records a failed delivery attempt and bumps the retry count.
func (o *Outbox) MarkFailed(seq uint64) error {
	return o.update(seq, func(r *Record) {
		r.State = StateFailed
		r.Retries++
	})
}

func (o *Outbox) update(seq uint64, fn func(*Record)) error {
	rec, err := o.Get(seq)
	if err != nil {
		return err
	}
	fn(&rec)
	rec.LastAttempt = time.Now().UnixNano()
	if err := o.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync); err != nil {
		return errors.Wrapf(err, "outbox: update %d", seq)
	}
	return nil
}

// -------------------- Scan --------------------

// Scan iterates records in sequence order until fn returns an error.
func (o *Outbox) Scan(fn func(Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyUpper),
	})
	if err != nil {
		return errors.Wrap(err, "outbox: iterator")
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// ScanByState iterates all records in the given state.
func (o *Outbox) ScanByState(state State, fn func(Record) error) error {
	return o.Scan(func(r Record) error {
		if r.State != state {
			return nil
		}
		return fn(r)
	})
}

// Pending returns up to limit undelivered records (anything not ACKED), in
// sequence order. SENT records are included: a crash between send and ack
// means delivery is at-least-once. limit <= 0 means no limit.
func (o *Outbox) Pending(limit int) ([]Record, error) {
	return o.Deliverable(limit, 0)
}

// Deliverable is Pending without FAILED records that have already used
// maxRetries attempts. Those stay in the store as FAILED. maxRetries 0
// disables the cap.
func (o *Outbox) Deliverable(limit int, maxRetries uint32) ([]Record, error) {
	var out []Record
	err := o.Scan(func(r Record) error {
		if r.State == StateAcked {
			return nil
		}
		if maxRetries > 0 && r.State == StateFailed && r.Retries >= maxRetries {
			return nil
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			return errStop
		}
		return nil
	})
	if errors.Is(err, errStop) {
		err = nil
	}
	return out, err
}

// DeleteAcked removes every ACKED record and returns how many were removed.
func (o *Outbox) DeleteAcked() (int, error) {
	var acked []uint64
	if err := o.ScanByState(StateAcked, func(r Record) error {
		acked = append(acked, r.Seq)
		return nil
	}); err != nil {
		return 0, err
	}
	if len(acked) == 0 {
		return 0, nil
	}

	b := o.db.NewBatch()
	defer b.Close()
	for _, seq := range acked {
		if err := b.Delete(keyFor(seq), nil); err != nil {
			return 0, errors.Wrap(err, "outbox: stage delete")
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return 0, errors.Wrap(err, "outbox: commit delete")
	}
	return len(acked), nil
}

// -------------------- Helpers --------------------

const (
	keyPrefix  = "match/"
	keyUpper   = "match/~"
	lastSeqKey = "meta/last_seq"
)

var errStop = errors.New("outbox: stop scan")

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	seq, err := strconv.ParseUint(strings.TrimPrefix(string(b), keyPrefix), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "outbox: bad key %q", b)
	}
	return seq, nil
}

func encodeSeq(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

// lastSeq reads the persisted high-water mark, so sequence numbers are not
// reused after every record has been acked and pruned.
func lastSeq(db *pebble.DB) (uint64, error) {
	val, closer, err := db.Get([]byte(lastSeqKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "outbox: read high-water mark")
	}
	defer closer.Close()

	if len(val) != 8 {
		return 0, errors.Wrapf(errCorrupt, "high-water mark: %d bytes", len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}
