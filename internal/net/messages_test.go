package net

import (
	"encoding/binary"
	"math"
	"testing"

	"matchcore/internal/common"

	"github.com/stretchr/testify/assert"
)

func encodeNewOrder(asset common.AssetType, orderType common.OrderType, ticker string, limitPrice float64, qty uint64, side common.Side, owner string) []byte {
	buf := make([]byte, BaseMessageHeaderLen+NewOrderMessageHeaderLen+len(owner))
	binary.BigEndian.PutUint16(buf[0:2], uint16(NewOrder))
	binary.BigEndian.PutUint16(buf[2:4], uint16(asset))
	binary.BigEndian.PutUint16(buf[4:6], uint16(orderType))
	copy(buf[6:10], ticker)
	binary.BigEndian.PutUint64(buf[10:18], math.Float64bits(limitPrice))
	binary.BigEndian.PutUint64(buf[18:26], qty)
	buf[26] = byte(side)
	buf[27] = uint8(len(owner))
	copy(buf[28:], owner)
	return buf
}

func TestParseNewOrder_RoundTrip(t *testing.T) {
	buf := encodeNewOrder(common.Equities, common.FillOrKill, "AAPL", 101.5, 20, common.Sell, "trader1")

	msg, err := parseMessage(buf)
	assert.NoError(t, err)

	order, ok := msg.(NewOrderMessage)
	assert.True(t, ok)
	assert.Equal(t, common.Equities, order.AssetType)
	assert.Equal(t, common.FillOrKill, order.OrderType)
	assert.Equal(t, "AAPL", order.Ticker)
	assert.Equal(t, 101.5, order.LimitPrice)
	assert.Equal(t, uint64(20), order.Quantity)
	assert.Equal(t, common.Sell, order.Side)
	assert.Equal(t, "trader1", order.Username)
}

func TestNewOrderMessage_MarketOrderGetsInvalidPrice(t *testing.T) {
	buf := encodeNewOrder(common.Equities, common.Market, "AAPL", 0, 20, common.Buy, "trader1")
	msg, err := parseMessage(buf)
	assert.NoError(t, err)

	order := msg.(NewOrderMessage)
	placed := order.Order()
	assert.True(t, placed.Price.Equal(common.InvalidPrice))
	assert.Equal(t, common.Market, placed.Type)
}

func TestParseCancelOrder_RoundTrip(t *testing.T) {
	buf := make([]byte, BaseMessageHeaderLen+CancelOrderMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	binary.BigEndian.PutUint16(buf[2:4], uint16(common.Equities))
	copy(buf[4:20], "order-id-12345678")

	msg, err := parseMessage(buf)
	assert.NoError(t, err)

	cancel, ok := msg.(CancelOrderMessage)
	assert.True(t, ok)
	assert.Equal(t, common.Equities, cancel.AssetType)
}

func TestParseModifyOrder_RoundTrip(t *testing.T) {
	buf := make([]byte, BaseMessageHeaderLen+ModifyOrderMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ModifyOrder))
	binary.BigEndian.PutUint16(buf[2:4], uint16(common.Equities))
	copy(buf[4:20], "order-id-12345678")
	buf[20] = byte(common.Sell)
	binary.BigEndian.PutUint64(buf[21:29], math.Float64bits(102.25))
	binary.BigEndian.PutUint64(buf[29:37], 7)

	msg, err := parseMessage(buf)
	assert.NoError(t, err)

	modify, ok := msg.(ModifyOrderMessage)
	assert.True(t, ok)
	assert.Equal(t, common.Sell, modify.Side)
	assert.Equal(t, 102.25, modify.Price)
	assert.Equal(t, uint64(7), modify.Quantity)
}

func TestReportSerialize_RoundTripFixedFields(t *testing.T) {
	report := Report{
		MessageType: ExecutionReport,
		Side:        common.Buy,
		Timestamp:   1234,
		Quantity:    10,
		Price:       100.5,
		Ticker:      "AAPL",
		OrderId:     "order-id-12345678",
	}
	buf, err := report.Serialize()
	assert.NoError(t, err)
	assert.Equal(t, reportFixedHeaderLen, len(buf))

	assert.Equal(t, byte(ExecutionReport), buf[0])
	assert.Equal(t, byte(common.Buy), buf[1])
	assert.Equal(t, uint64(1234), binary.BigEndian.Uint64(buf[2:10]))
	assert.Equal(t, uint64(10), binary.BigEndian.Uint64(buf[10:18]))
	assert.Equal(t, 100.5, math.Float64frombits(binary.BigEndian.Uint64(buf[18:26])))
	assert.Equal(t, "AAPL", string(buf[32:36]))
}
