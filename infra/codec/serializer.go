package codec

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Serializer encodes match events for the outbox and the broker.
type Serializer interface {
	Name() string
	Encode(MatchEvent) ([]byte, error)
	Decode([]byte) (MatchEvent, error)
}

// ByName returns the serializer registered under name ("json" or "proto").
func ByName(name string) (Serializer, error) {
	switch name {
	case "", "json":
		return JSONSerializer{}, nil
	case "proto":
		return ProtoSerializer{}, nil
	default:
		return nil, errors.Newf("codec: unknown serializer %q", name)
	}
}

// ---------- JSON ----------

type JSONSerializer struct{}

func (JSONSerializer) Name() string { return "json" }

func (JSONSerializer) Encode(e MatchEvent) ([]byte, error) {
	return json.Marshal(e)
}

func (JSONSerializer) Decode(b []byte) (MatchEvent, error) {
	var e MatchEvent
	if err := json.Unmarshal(b, &e); err != nil {
		return MatchEvent{}, errors.Wrap(err, "codec: decode json event")
	}
	return e, nil
}

// ---------- Protobuf ----------

// ProtoSerializer writes events as a google.protobuf.Struct. Integer ids and
// the price travel as strings so no precision is lost to float64.
type ProtoSerializer struct{}

func (ProtoSerializer) Name() string { return "proto" }

func (ProtoSerializer) Encode(e MatchEvent) ([]byte, error) {
	st, err := structpb.NewStruct(map[string]any{
		"event_id":      e.EventID,
		"symbol":        e.Symbol,
		"buy_order_id":  strconv.FormatUint(e.BuyOrderID, 10),
		"sell_order_id": strconv.FormatUint(e.SellOrderID, 10),
		"quantity":      strconv.FormatInt(e.Quantity, 10),
		"price":         e.Price.String(),
		"executed_at":   e.ExecutedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, errors.Wrap(err, "codec: build proto event")
	}
	return proto.Marshal(st)
}

func (ProtoSerializer) Decode(b []byte) (MatchEvent, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(b, &st); err != nil {
		return MatchEvent{}, errors.Wrap(err, "codec: decode proto event")
	}
	field := func(k string) string { return st.GetFields()[k].GetStringValue() }

	var (
		e   MatchEvent
		err error
	)
	e.EventID = field("event_id")
	e.Symbol = field("symbol")
	if e.BuyOrderID, err = strconv.ParseUint(field("buy_order_id"), 10, 64); err != nil {
		return MatchEvent{}, errors.Wrap(err, "codec: buy_order_id")
	}
	if e.SellOrderID, err = strconv.ParseUint(field("sell_order_id"), 10, 64); err != nil {
		return MatchEvent{}, errors.Wrap(err, "codec: sell_order_id")
	}
	if e.Quantity, err = strconv.ParseInt(field("quantity"), 10, 64); err != nil {
		return MatchEvent{}, errors.Wrap(err, "codec: quantity")
	}
	if e.Price, err = decimal.NewFromString(field("price")); err != nil {
		return MatchEvent{}, errors.Wrap(err, "codec: price")
	}
	if e.ExecutedAt, err = time.Parse(time.RFC3339Nano, field("executed_at")); err != nil {
		return MatchEvent{}, errors.Wrap(err, "codec: executed_at")
	}
	return e, nil
}
