package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"matchcore/internal/common"
	matchcoreNet "matchcore/internal/net"
)

// reportFixedHeaderLen matches Report's reportFixedHeaderLen:
// 1+1+8+8+8+2+4+4+16 = 52 bytes.
const reportFixedHeaderLen = 52

func main() {
	// 1. CLI Parameter Parsing
	serverAddr := flag.String("server", "127.0.0.1:9001", "Address of the exchange server")
	owner := flag.String("owner", "", "Owner username (compulsory)")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel', 'modify']")

	// Order Parameters
	ticker := flag.String("ticker", "AAPL", "Ticker symbol (max 4 chars)")
	sideStr := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	typeStr := flag.String("type", "gtc", "Order type: 'gtc', 'market', 'fak', or 'fok'")
	price := flag.Float64("price", 100.0, "Limit price")
	qtyStr := flag.String("qty", "10", "Quantity or comma-separated list (e.g. 10,20,50)")

	// Cancel/modify parameters
	uuid := flag.String("uuid", "", "Order id to cancel or modify")

	flag.Parse()

	// Validation
	if *owner == "" {
		fmt.Println("Error: -owner is compulsory.")
		flag.Usage()
		os.Exit(1)
	}

	// Connect to Server
	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s as '%s'\n", *serverAddr, *owner)

	// Start Listening for Reports (Async)
	go readReports(conn)

	side := common.Buy
	if strings.ToLower(*sideStr) == "sell" {
		side = common.Sell
	}

	orderType := parseOrderType(*typeStr)

	// Execute Action
	switch strings.ToLower(*action) {
	case "place":
		quantities := parseQuantities(*qtyStr)
		for _, q := range quantities {
			err := sendPlaceOrder(conn, *owner, common.Equities, orderType, *ticker, *price, q, side)
			if err != nil {
				log.Printf("Failed to place order (Qty: %d): %v", q, err)
			} else {
				fmt.Printf("-> Sent %s %s Order: %s %d @ %.2f\n", orderType, strings.ToUpper(*sideStr), *ticker, q, *price)
			}
			// Small optional sleep to ensure server processes sequence distinctly if needed
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		if *uuid == "" {
			log.Fatal("Error: -uuid is required for cancellation")
		}
		err := sendCancelOrder(conn, common.Equities, *uuid)
		if err != nil {
			log.Printf("Failed to send cancel request: %v", err)
		} else {
			fmt.Printf("-> Sent Cancel Request for id: %s\n", *uuid)
		}

	case "modify":
		if *uuid == "" {
			log.Fatal("Error: -uuid is required for modification")
		}
		qtys := parseQuantities(*qtyStr)
		if len(qtys) == 0 {
			log.Fatal("Error: -qty must name a single quantity for modification")
		}
		err := sendModifyOrder(conn, common.Equities, *uuid, side, *price, qtys[0])
		if err != nil {
			log.Printf("Failed to send modify request: %v", err)
		} else {
			fmt.Printf("-> Sent Modify Request for id: %s -> %s %d @ %.2f\n", *uuid, strings.ToUpper(*sideStr), qtys[0], *price)
		}

	default:
		log.Fatalf("Unknown action: %s", *action)
	}

	// Keep the client alive to receive execution reports
	fmt.Println("\nListening for reports... (Press Ctrl+C to exit)")
	select {}
}

func parseOrderType(s string) common.OrderType {
	switch strings.ToLower(s) {
	case "market":
		return common.Market
	case "fak":
		return common.FillAndKill
	case "fok":
		return common.FillOrKill
	default:
		return common.GoodTillCancel
	}
}

// parseQuantities splits a comma-separated string into a slice of uint64
func parseQuantities(input string) []uint64 {
	parts := strings.Split(input, ",")
	var result []uint64
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if val, err := strconv.ParseUint(p, 10, 64); err == nil {
			result = append(result, val)
		} else {
			log.Printf("Warning: Invalid quantity '%s', skipping.", p)
		}
	}
	return result
}

// sendPlaceOrder constructs and sends the NewOrder message.
func sendPlaceOrder(conn net.Conn, owner string, asset common.AssetType, orderType common.OrderType, ticker string, price float64, qty uint64, side common.Side) error {
	usernameLen := len(owner)
	totalLen := matchcoreNet.BaseMessageHeaderLen + matchcoreNet.NewOrderMessageHeaderLen + usernameLen

	buf := make([]byte, totalLen)

	binary.BigEndian.PutUint16(buf[0:2], uint16(matchcoreNet.NewOrder))

	binary.BigEndian.PutUint16(buf[2:4], uint16(asset))
	binary.BigEndian.PutUint16(buf[4:6], uint16(orderType))

	tickerBytes := make([]byte, 4)
	copy(tickerBytes, ticker)
	copy(buf[6:10], tickerBytes)

	binary.BigEndian.PutUint64(buf[10:18], math.Float64bits(price))
	binary.BigEndian.PutUint64(buf[18:26], qty)

	buf[26] = byte(side)
	buf[27] = uint8(usernameLen)

	copy(buf[28:], owner)

	_, err := conn.Write(buf)
	return err
}

// sendCancelOrder constructs and sends the CancelOrder message.
func sendCancelOrder(conn net.Conn, asset common.AssetType, orderId string) error {
	buf := make([]byte, matchcoreNet.BaseMessageHeaderLen+matchcoreNet.CancelOrderMessageHeaderLen)

	binary.BigEndian.PutUint16(buf[0:2], uint16(matchcoreNet.CancelOrder))

	binary.BigEndian.PutUint16(buf[2:4], uint16(asset))

	idBytes := make([]byte, 16)
	copy(idBytes, orderId)
	copy(buf[4:20], idBytes)

	_, err := conn.Write(buf)
	return err
}

// sendModifyOrder constructs and sends the ModifyOrder message.
func sendModifyOrder(conn net.Conn, asset common.AssetType, orderId string, side common.Side, price float64, qty uint64) error {
	buf := make([]byte, matchcoreNet.BaseMessageHeaderLen+matchcoreNet.ModifyOrderMessageHeaderLen)

	binary.BigEndian.PutUint16(buf[0:2], uint16(matchcoreNet.ModifyOrder))

	binary.BigEndian.PutUint16(buf[2:4], uint16(asset))

	idBytes := make([]byte, 16)
	copy(idBytes, orderId)
	copy(buf[4:20], idBytes)

	buf[20] = byte(side)
	binary.BigEndian.PutUint64(buf[21:29], math.Float64bits(price))
	binary.BigEndian.PutUint64(buf[29:37], qty)

	_, err := conn.Write(buf)
	return err
}

// readReports continuously reads and parses Report messages from the server.
func readReports(conn net.Conn) {
	for {
		headerBuf := make([]byte, reportFixedHeaderLen)
		_, err := io.ReadFull(conn, headerBuf)
		if err != nil {
			if err != io.EOF {
				log.Printf("Connection lost: %v", err)
			}
			os.Exit(0)
		}

		msgType := matchcoreNet.ReportMessageType(headerBuf[0])
		side := common.Side(headerBuf[1])

		qty := binary.BigEndian.Uint64(headerBuf[10:18])
		price := math.Float64frombits(binary.BigEndian.Uint64(headerBuf[18:26]))
		counterpartyLen := binary.BigEndian.Uint16(headerBuf[26:28])
		errStrLen := binary.BigEndian.Uint32(headerBuf[28:32])

		ticker := string(headerBuf[32:36])
		orderId := string(headerBuf[36:52])

		totalVarLen := int(counterpartyLen) + int(errStrLen)
		varBuf := make([]byte, totalVarLen)
		if totalVarLen > 0 {
			_, err := io.ReadFull(conn, varBuf)
			if err != nil {
				log.Printf("Error reading report body: %v", err)
				break
			}
		}

		errStr := ""
		counterparty := ""
		if errStrLen > 0 {
			errStr = string(varBuf[:errStrLen])
		}
		if counterpartyLen > 0 {
			counterparty = string(varBuf[errStrLen:])
		}

		if msgType == matchcoreNet.ErrorReport {
			fmt.Printf("\n[SERVER ERROR] %s\n", errStr)
		} else {
			sideStr := "BUY"
			if side == common.Sell {
				sideStr = "SELL"
			}
			fmt.Printf("\n[EXECUTION] %s %s | Qty: %d | Price: %.2f | counterparty: %s | id: %s\n",
				sideStr, ticker, qty, price, counterparty, strings.TrimRight(orderId, "\x00"))
		}
	}
}
