package transbank

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/autoparts/internal/domain/payment"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

// simulator 模拟网关
// 记住建单时的金额,确认时原样返回AUTHORIZED;同一Token只能确认一次
type simulator struct {
	baseURL string

	mu  sync.Mutex
	txs map[string]*simTransaction
}

type simTransaction struct {
	buyOrder  string
	amount    int64
	committed bool
}

func newSimulator(baseURL string) *simulator {
	return &simulator{baseURL: baseURL, txs: make(map[string]*simTransaction)}
}

func (s *simulator) create(req payment.CreateTransactionRequest) *payment.Transaction {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	token := fmt.Sprintf("token_%s_%s_%d", sessionID, req.BuyOrder, time.Now().Unix())

	s.mu.Lock()
	s.txs[token] = &simTransaction{buyOrder: req.BuyOrder, amount: req.Amount}
	s.mu.Unlock()

	return &payment.Transaction{
		Token: token,
		URL:   s.baseURL + "/webpayserver/initTransaction?token=" + url.QueryEscape(token),
	}
}

func (s *simulator) commit(token string) (*payment.CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[token]
	if !ok {
		return nil, apperrors.ErrGatewayError.WithErr(&apiError{StatusCode: 422, Message: "invalid token"})
	}
	if tx.committed {
		return nil, apperrors.ErrGatewayError.WithErr(&apiError{StatusCode: 422, Message: "transaction already committed"})
	}
	tx.committed = true

	return &payment.CommitResult{
		Status:            payment.GatewayStatusAuthorized,
		AuthorizationCode: fmt.Sprintf("%06d", time.Now().UnixNano()%1000000),
		Amount:            tx.amount,
		BuyOrder:          tx.buyOrder,
		ResponseCode:      0,
		CardLast4:         "6623",
		TransactionDate:   time.Now(),
	}, nil
}
