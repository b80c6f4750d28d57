// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/api/utils"
	"github.com/vechain/parastaking/callpool"
	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/eventdb"
	"github.com/vechain/parastaking/log"
	"github.com/vechain/parastaking/thor"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// send pings to peer with this period, must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// time allowed to write a message to the peer.
	writeWait = 10 * time.Second
)

type Subscriptions struct {
	repo     *chain.Repository
	db       *eventdb.EventDB
	pool     callpool.Pool
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(repo *chain.Repository, allowedOrigins []string, db *eventdb.EventDB, pool callpool.Pool) *Subscriptions {
	return &Subscriptions{
		repo: repo,
		db:   db,
		pool: pool,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// position returns the first block to stream, from the pos query; the best block by default.
func (s *Subscriptions) position(req *http.Request) (uint32, error) {
	number, best, err := utils.ParseRevision(req.URL.Query().Get("pos"))
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	if best {
		if summary := s.repo.BestSummary(); summary != nil {
			return summary.Number, nil
		}
		return 0, nil
	}
	return number, nil
}

func (s *Subscriptions) parseEventFilter(req *http.Request) (*EventFilter, error) {
	query := req.URL.Query()
	filter := &EventFilter{
		Module: query.Get("module"),
		Name:   query.Get("name"),
	}
	if v := query.Get("account"); v != "" {
		addr, err := thor.ParseAddress(v)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "account"))
		}
		filter.Account = &addr
	}
	return filter, nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	var reader msgReader
	switch mux.Vars(req)["subject"] {
	case "block":
		pos, err := s.position(req)
		if err != nil {
			return err
		}
		reader = newBlockReader(s.repo, pos)
	case "event":
		pos, err := s.position(req)
		if err != nil {
			return err
		}
		filter, err := s.parseEventFilter(req)
		if err != nil {
			return err
		}
		reader = newEventReader(s.repo, s.db, pos, filter)
	default:
		return utils.NotFound(errors.New("not found"))
	}

	conn, closed, err := s.setupConn(w, req)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	err = s.pipe(conn, reader, closed)
	s.closeConn(conn, err)
	return nil
}

func (s *Subscriptions) handleCallSubject(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	ch := make(chan *callpool.CallEvent, 64)
	sub := s.pool.SubscribeCallEvent(ch)
	defer sub.Unsubscribe()

	conn, closed, err := s.setupConn(w, req)
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	err = s.pipeCalls(conn, ch, closed)
	s.closeConn(conn, err)
	return nil
}

// setupConn upgrades the request and starts the read loop, which handles
// pongs and reports the peer closing through the returned channel.
func (s *Subscriptions) setupConn(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, nil, err
	}

	closed := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(closed)

		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read error", "err", err)
				return
			}
		}
	}()
	return conn, closed, nil
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, err error) {
	var msg []byte
	if err != nil {
		msg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		msg = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	}
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		logger.Debug("write close message", "err", err)
	}
	if err := conn.Close(); err != nil {
		logger.Debug("close websocket", "err", err)
	}
}

func (s *Subscriptions) write(conn *websocket.Conn, msg any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (s *Subscriptions) ping(conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader msgReader, closed chan struct{}) error {
	ticker := s.repo.NewTicker()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		msgs, hasMore, err := reader.Read()
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := s.write(conn, msg); err != nil {
				return err
			}
		}
		if hasMore {
			continue
		}
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-ticker.C():
		case <-pingTicker.C:
			if err := s.ping(conn); err != nil {
				return err
			}
		}
	}
}

func (s *Subscriptions) pipeCalls(conn *websocket.Conn, ch chan *callpool.CallEvent, closed chan struct{}) error {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case ev := <-ch:
			if err := s.write(conn, convertCallEvent(ev)); err != nil {
				return err
			}
		case <-pingTicker.C:
			if err := s.ping(conn); err != nil {
				return err
			}
		}
	}
}

// Close ends all subscriptions and waits for them.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/call").
		Methods(http.MethodGet).
		Name("WS /subscriptions/call").
		HandlerFunc(utils.WrapHandlerFunc(s.handleCallSubject))
	sub.Path("/{subject}").
		Methods(http.MethodGet).
		Name("WS /subscriptions").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
