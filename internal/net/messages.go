package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"matchcore/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short for specified username length")
)

type MessageType int

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	ModifyOrder
)

type ReportMessageType int

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

type Message interface {
	GetType() MessageType
}

// Message format constants. OrderType now ranges over the four TIF
// policies (spec §3: GoodTillCancel, Market, FillAndKill, FillOrKill)
// rather than just limit/market; it keeps the 2-byte field width the
// teacher's wire format already reserved for it.
const (
	BaseMessageHeaderLen        = 2
	NewOrderMessageHeaderLen    = 2 + 2 + 4 + 8 + 8 + 1 + 1
	CancelOrderMessageHeaderLen = 2 + 16
	ModifyOrderMessageHeaderLen = 2 + 16 + 1 + 8 + 8
)

// Generic message type.
type BaseMessage struct {
	TypeOf MessageType // 2 bytes
}

func (m BaseMessage) GetType() MessageType {
	return m.TypeOf
}

func parseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return BaseMessage{}, errors.New("message too short to contain header")
	}

	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	msg = msg[2:]
	switch typeOf {
	case NewOrder:
		return parseNewOrder(msg)
	case CancelOrder:
		return parseCancelOrder(msg)
	case ModifyOrder:
		return parseModifyOrder(msg)
	default:
		return BaseMessage{}, ErrInvalidMessageType
	}
}

// NewOrderMessage is the wire form of a new-order request. AssetType
// exists only at this layer (spec §6's front-end routing concern, see
// common.AssetType's doc comment); it never reaches the engine.
type NewOrderMessage struct {
	BaseMessage
	AssetType   common.AssetType // 2 bytes
	OrderType   common.OrderType // 2 bytes
	Ticker      string           // 4 bytes
	LimitPrice  float64          // 8 bytes
	Quantity    uint64           // 8 bytes
	Side        common.Side      // 1 byte
	UsernameLen uint8            // 1 byte
	Username    string           // n bytes
}

// Order converts the wire message into a core Order with a freshly minted
// id. A Market order carries common.InvalidPrice until the engine rewrites
// it during AddOrder's Market conversion step.
func (o *NewOrderMessage) Order() *common.Order {
	id := common.OrderId(uuid.New().String())
	price := decimal.NewFromFloat(o.LimitPrice)
	if o.OrderType == common.Market {
		price = common.InvalidPrice
	}
	return common.NewOrder(id, o.Side, o.OrderType, price, common.Quantity(o.Quantity), o.Ticker, o.Username)
}

func parseNewOrder(msg []byte) (NewOrderMessage, error) {
	if len(msg) < NewOrderMessageHeaderLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m := NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}

	m.AssetType = common.AssetType(binary.BigEndian.Uint16(msg[0:2]))
	m.OrderType = common.OrderType(binary.BigEndian.Uint16(msg[2:4]))
	m.Ticker = string(msg[4:8]) // Assuming ASCII/UTF-8 string
	m.LimitPrice = math.Float64frombits(binary.BigEndian.Uint64(msg[8:16]))
	m.Quantity = binary.BigEndian.Uint64(msg[16:24])
	m.Side = common.Side(msg[24])
	m.UsernameLen = uint8(msg[25])

	// Calculate expected total length.
	expectedTotalLen := int(NewOrderMessageHeaderLen + m.UsernameLen)
	if len(msg) < expectedTotalLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m.Username = string(msg[26 : 26+m.UsernameLen])

	return m, nil
}

type CancelOrderMessage struct {
	BaseMessage
	AssetType common.AssetType // 2 bytes
	OrderId   common.OrderId   // 16 bytes
}

func parseCancelOrder(msg []byte) (CancelOrderMessage, error) {
	m := CancelOrderMessage{BaseMessage: BaseMessage{TypeOf: CancelOrder}}

	if len(msg) < CancelOrderMessageHeaderLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	m.AssetType = common.AssetType(binary.BigEndian.Uint16(msg[0:2]))
	m.OrderId = common.OrderId(msg[2:18])

	return m, nil
}

// ModifyOrderMessage is the wire form of a modify request (spec §4.C8
// modify): the new side, price and quantity for an existing order id.
type ModifyOrderMessage struct {
	BaseMessage
	AssetType common.AssetType // 2 bytes
	OrderId   common.OrderId   // 16 bytes
	Side      common.Side      // 1 byte
	Price     float64          // 8 bytes
	Quantity  uint64           // 8 bytes
}

func parseModifyOrder(msg []byte) (ModifyOrderMessage, error) {
	if len(msg) < ModifyOrderMessageHeaderLen {
		return ModifyOrderMessage{}, ErrMessageTooShort
	}
	m := ModifyOrderMessage{BaseMessage: BaseMessage{TypeOf: ModifyOrder}}
	m.AssetType = common.AssetType(binary.BigEndian.Uint16(msg[0:2]))
	m.OrderId = common.OrderId(msg[2:18])
	m.Side = common.Side(msg[18])
	m.Price = math.Float64frombits(binary.BigEndian.Uint64(msg[19:27]))
	m.Quantity = binary.BigEndian.Uint64(msg[27:35])
	return m, nil
}

type Report struct {
	MessageType     ReportMessageType // 1 byte
	Side            common.Side       // 1 byte
	Timestamp       uint64            // 8 bytes
	Quantity        uint64            // 8 bytes
	Price           float64           // 8 bytes
	CounterpartyLen uint16            // 2 bytes
	ErrStrLen       uint32            // 4 bytes
	Ticker          string            // 4 bytes
	OrderId         common.OrderId    // 16 bytes
	Err             string            // n bytes
	Counterparty    string            // n bytes
}

const reportFixedHeaderLen = 1 + 1 + 8 + 8 + 8 + 2 + 4 + 4 + 16

// Serialize converts the report to be sent on the wire.
func (r *Report) Serialize() ([]byte, error) {
	totalSize := reportFixedHeaderLen + len(r.Err) + len(r.Counterparty)

	buf := make([]byte, totalSize)
	buf[0] = byte(r.MessageType)
	buf[1] = byte(r.Side)
	binary.BigEndian.PutUint64(buf[2:10], r.Timestamp)
	binary.BigEndian.PutUint64(buf[10:18], r.Quantity)
	binary.BigEndian.PutUint64(buf[18:26], math.Float64bits(r.Price))
	binary.BigEndian.PutUint16(buf[26:28], r.CounterpartyLen)
	binary.BigEndian.PutUint32(buf[28:32], r.ErrStrLen)

	// Pack Ticker and OrderId into fixed-width buffers; copy() truncates
	// rather than panicking if either is shorter than its field.
	var tickerBuf, idBuf [16]byte
	copy(tickerBuf[:4], r.Ticker)
	copy(buf[32:36], tickerBuf[:4])
	copy(idBuf[:], string(r.OrderId))
	copy(buf[36:52], idBuf[:])

	offset := reportFixedHeaderLen
	if r.ErrStrLen > 0 {
		copy(buf[offset:], r.Err)
		offset += int(r.ErrStrLen)
	}
	if r.CounterpartyLen > 0 {
		copy(buf[offset:], r.Counterparty)
	}
	return buf, nil
}

// executionReport serializes one leg of a fill: o is the order that
// participated (its Side, Ticker and OrderId identify the leg), printed at
// price for qty units. Each leg of a trade prints at its own resting
// price (common.TradeInfo's doc comment), so the caller passes o.Price
// (or the taker's synthetic/limit price) rather than a shared trade price.
func executionReport(o *common.Order, price common.Price, qty common.Quantity) ([]byte, error) {
	report := Report{
		MessageType: ExecutionReport,
		Side:        o.Side,
		Timestamp:   uint64(time.Now().UnixNano()),
		Quantity:    uint64(qty),
		Price:       price.InexactFloat64(),
		Ticker:      o.Ticker,
		OrderId:     o.OrderId,
	}
	return report.Serialize()
}

func errorReport(err error) ([]byte, error) {
	errStr := fmt.Sprintf("%v", err)
	report := Report{
		MessageType: ErrorReport,
		Timestamp:   uint64(time.Now().UnixNano()),
		ErrStrLen:   uint32(len(errStr)),
		Err:         errStr,
	}
	return report.Serialize()
}
