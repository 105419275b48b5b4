package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"matchcore/internal/common"
	"matchcore/internal/flyweight"
	"matchcore/internal/utils"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"
)

const (
	MAX_RECV_SIZE      = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = time.Second
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
	ErrClientDoesNotExist = errors.New("client does not exist")
	ErrUnknownAsset       = errors.New("unknown asset type")
)

// ClientSession tracks one connected TCP session. owner is learned from
// the first order the session places, since the wire protocol has no
// separate login/handshake step.
type ClientSession struct {
	conn  net.Conn
	owner string
}

// ClientMessage links a message to the client sending it.
type ClientMessage struct {
	clientAddress string
	message       Message
}

// Engine is the subset of engine.Engine the network front-end needs. It
// is declared here rather than imported directly so internal/net depends
// only on the shapes it actually calls.
type Engine interface {
	AddOrder(o *common.Order) []common.Trade
	CancelOrder(id common.OrderId)
	ModifyOrder(id common.OrderId, side common.Side, price common.Price, qty common.Quantity) []common.Trade
}

// Server is a TCP front-end that routes wire messages to one Engine per
// AssetType (spec §1 Non-goals excludes cross-instrument coordination;
// this server just dispatches to whichever single-instrument engine the
// message names).
type Server struct {
	address            string
	port               int
	engines            map[common.AssetType]Engine
	strings            *flyweight.Pool
	pool               utils.WorkerPool
	cancel             context.CancelFunc
	clientSessions     map[string]*ClientSession
	clientSessionsLock sync.Mutex
	clientMessages     chan ClientMessage
}

// New constructs a server that dispatches to engines by asset type.
func New(address string, port int, engines map[common.AssetType]Engine) *Server {
	return &Server{
		address:        address,
		port:           port,
		engines:        engines,
		strings:        flyweight.New(),
		pool:           utils.NewWorkerPool(defaultNWorkers),
		clientSessions: make(map[string]*ClientSession),
		clientMessages: make(chan ClientMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	s.cancel()
}

func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})

	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}

			log.Info().
				Str("address", conn.LocalAddr().String()).
				Msg("new client added")
			s.addClientSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

// ReportTrade sends one execution report per leg to whichever connected
// sessions own the bid/ask orders. Registered as an engine.Observers
// OnOrderMatched callback (see cmd/server), so it fires once per fill with
// the orders' own resting/limit prices, per the trade price policy.
// Missing sessions (client disconnected, or the counterparty was never
// directly connected to this server instance) are logged and skipped
// rather than treated as fatal — trade reporting is best-effort, unlike
// order matching itself.
func (s *Server) ReportTrade(bid, ask *common.Order, qty common.Quantity) {
	bidReport, err := executionReport(bid, bid.Price, qty)
	if err != nil {
		log.Error().Err(err).Msg("unable to serialize bid execution report")
	} else {
		s.sendToOwner(bid.Owner, bidReport)
	}

	askReport, err := executionReport(ask, ask.Price, qty)
	if err != nil {
		log.Error().Err(err).Msg("unable to serialize ask execution report")
	} else {
		s.sendToOwner(ask.Owner, askReport)
	}
}

func (s *Server) sendToOwner(owner string, report []byte) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	for addr, session := range s.clientSessions {
		if session.owner != owner {
			continue
		}
		if _, err := session.conn.Write(report); err != nil {
			log.Error().Err(err).Str("address", addr).Msg("unable to send report")
			delete(s.clientSessions, addr)
		}
		return
	}
	log.Debug().Str("owner", owner).Msg("no connected session for report owner, skipping")
}

func (s *Server) ReportError(clientAddress string, reportErr error) error {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	report, err := errorReport(reportErr)
	if err != nil {
		return err
	}

	client, ok := s.clientSessions[clientAddress]
	if !ok {
		return ErrClientDoesNotExist
	}

	if _, err := client.conn.Write(report); err != nil {
		delete(s.clientSessions, clientAddress)
		return fmt.Errorf("unable to send report: %w", err)
	}
	return nil
}

// sessionHandler reads off incoming messages from clients and handles
// high-level session logic. Messages are received from the pool of
// workers.
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case message := <-s.clientMessages:
			if err := s.handleMessage(message); err != nil {
				log.Error().
					Err(err).
					Str("clientAddress", message.clientAddress).
					Msg("error handling message")
				s.ReportError(message.clientAddress, err)
			}
		}
	}
}

func (s *Server) handleMessage(message ClientMessage) error {
	switch message.message.GetType() {
	case NewOrder:
		order, ok := message.message.(NewOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		eng, ok := s.engines[order.AssetType]
		if !ok {
			return ErrUnknownAsset
		}
		ord := order.Order()
		ord.Ticker = s.strings.Intern(ord.Ticker)
		ord.Owner = s.strings.Intern(ord.Owner)
		s.setSessionOwner(message.clientAddress, ord.Owner)

		// Trade reporting happens via the engine's OnOrderMatched observer
		// (wired to s.ReportTrade in cmd/server), not from this return
		// value — the observer has the resting orders themselves, which
		// is what a report needs (owner, ticker, per-leg price).
		eng.AddOrder(ord)
	case CancelOrder:
		order, ok := message.message.(CancelOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		eng, ok := s.engines[order.AssetType]
		if !ok {
			return ErrUnknownAsset
		}
		eng.CancelOrder(order.OrderId)
	case ModifyOrder:
		order, ok := message.message.(ModifyOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		eng, ok := s.engines[order.AssetType]
		if !ok {
			return ErrUnknownAsset
		}
		price := decimal.NewFromFloat(order.Price)
		eng.ModifyOrder(order.OrderId, order.Side, price, common.Quantity(order.Quantity))
	default:
		log.Error().
			Int("messageType", int(message.message.GetType())).
			Any("message", message).
			Msg("invalid message type")
		return ErrInvalidMessageType
	}
	return nil
}

// handleConnection is a short-lived worker method which reads the next
// message off the connection, parses and passes it forward to
// sessionHandler. If the connection dies, the client session is cleaned
// up. This method does not lock any client session directly and gives up
// early if the connection is terminated, so it is safe on map accesses.
// Note: any error returned from here is fatal to the worker.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	// The connection stays open while it is requeued for its next message;
	// it is closed only when this worker gives up on it.
	closeConn := func() {
		if err := conn.Close(); err != nil {
			log.Error().Str("address", conn.LocalAddr().String()).Err(err)
		}
	}

	err := conn.SetDeadline(time.Now().Add(defaultConnTimeout))
	if err != nil {
		log.Error().
			Str("address", conn.LocalAddr().Network()).
			Err(err).
			Msg("failed setting deadline for connection")
		return nil
	}

	buffer := make([]byte, MAX_RECV_SIZE)
	select {
	case <-t.Dying():
		closeConn()
		return nil
	default:
		n, err := conn.Read(buffer)
		if err != nil {
			log.Error().
				Err(err).
				Str("address", conn.LocalAddr().String()).
				Msg("error reading from connection")
			s.deleteClientSession(conn.LocalAddr().String())
			closeConn()
			return nil
		}

		message, err := parseMessage(buffer[:n])
		if err != nil {
			log.Error().
				Err(err).
				Str("address", conn.LocalAddr().String()).
				Msg("error parsing message")
			s.deleteClientSession(conn.LocalAddr().String())
			closeConn()
			return nil
		}

		s.clientMessages <- ClientMessage{
			message:       message,
			clientAddress: conn.LocalAddr().String(),
		}

		s.pool.AddTask(conn)
	}
	return nil
}

func (s *Server) addClientSession(conn net.Conn) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	s.clientSessions[conn.LocalAddr().String()] = &ClientSession{conn: conn}
}

func (s *Server) deleteClientSession(address string) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	delete(s.clientSessions, address)
}

func (s *Server) setSessionOwner(address, owner string) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	if session, ok := s.clientSessions[address]; ok {
		session.owner = owner
	}
}
