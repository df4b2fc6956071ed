package jsonrpc

import (
	"context"
	"encoding/hex"
	"net/http"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/TangibleTNFT/tangible-foundation-contracts/bridge"
	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
	"github.com/TangibleTNFT/tangible-foundation-contracts/jsonx"
	"github.com/TangibleTNFT/tangible-foundation-contracts/ledger"
	"github.com/TangibleTNFT/tangible-foundation-contracts/rebase"
	"github.com/TangibleTNFT/tangible-foundation-contracts/transport"
	"github.com/TangibleTNFT/tangible-foundation-contracts/utils"
)

// --- Error type used by handlers ---

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func toJRPC2Error(e *rpcError) error {
	if e == nil {
		return nil
	}
	var ledgerError errors.LedgerError
	err := jsonx.Unmarshal([]byte(e.Message), &ledgerError)
	if err == nil {
		return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", ledgerError.Message).WithData(ledgerError)
	}
	return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", e.Message)
}

func wrapErr(err error) *rpcError {
	return &rpcError{Code: -32000, Message: err.Error()}
}

// --- Params/Results ---

// Account
type getAccountRequest struct {
	Address string `json:"address"`
}

type getAccountResponse struct {
	Address  string `json:"address"`
	Balance  string `json:"balance"`
	Shares   string `json:"shares"`
	OptedOut bool   `json:"opted_out"`
}

// Token
type getTotalSupplyResponse struct {
	TotalSupply    string `json:"total_supply"`
	TotalShares    string `json:"total_shares"`
	RebaseIndex    string `json:"rebase_index"`
	SequenceNumber uint64 `json:"sequence_number"`
}

type transferParams struct {
	Caller string `json:"caller"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type approveParams struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type getAllowanceRequest struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

type getAllowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance string `json:"allowance"`
}

type supplyChangeParams struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type okResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Rebase
type setOptOutParams struct {
	Account string `json:"account"`
	Disable bool   `json:"disable"`
}

type setIndexParams struct {
	Updater string `json:"updater"`
	Index   string `json:"index"`
}

type syncIndexParams struct {
	Index          string `json:"index"`
	SequenceNumber uint64 `json:"sequence_number"`
}

// Bridge
type bridgeSendParams struct {
	Caller        string `json:"caller"`
	From          string `json:"from"`
	DstChain      uint64 `json:"dst_chain"`
	To            string `json:"to"`             // hex-encoded destination address
	Amount        string `json:"amount"`         // decimal token amount
	AdapterParams string `json:"adapter_params"` // hex, empty unless custom params enabled
}

type retryParams struct {
	SrcChain uint64 `json:"src_chain"`
	SrcPath  string `json:"src_path"` // hex
	Sequence uint64 `json:"sequence"`
	Payload  string `json:"payload"` // hex
}

type healthCheckResponse struct {
	Status         string `json:"status"`
	ChainID        uint64 `json:"chain_id"`
	MainChain      bool   `json:"main_chain"`
	SequenceNumber uint64 `json:"sequence_number"`
}

// --- Server ---

type Server struct {
	addr      string
	ledger    *ledger.Ledger
	ctrl      *rebase.Controller
	sync      *rebase.Synchronizer
	bridge    *bridge.Bridge
	transport *transport.Transport
}

func NewServer(addr string, l *ledger.Ledger, ctrl *rebase.Controller, sync *rebase.Synchronizer, b *bridge.Bridge, t *transport.Transport) *Server {
	return &Server{
		addr:      addr,
		ledger:    l,
		ctrl:      ctrl,
		sync:      sync,
		bridge:    b,
		transport: t,
	}
}

func (s *Server) Start() {
	methods := s.buildMethodMap()
	jh := jhttp.NewBridge(methods, &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	mux := http.NewServeMux()
	mux.Handle("/", jh)
	go http.ListenAndServe(s.addr, mux)
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		MethodAccountGetAccount: handler.New(func(ctx context.Context, p getAccountRequest) (*getAccountResponse, error) {
			res, err := s.rpcGetAccount(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodTokenGetTotalSupply: handler.New(func(ctx context.Context) (*getTotalSupplyResponse, error) {
			res, err := s.rpcGetTotalSupply()
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodTokenTransfer: handler.New(func(ctx context.Context, p transferParams) (*okResponse, error) {
			res, err := s.rpcTransfer(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodTokenApprove: handler.New(func(ctx context.Context, p approveParams) (*okResponse, error) {
			res, err := s.rpcApprove(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodTokenGetAllowance: handler.New(func(ctx context.Context, p getAllowanceRequest) (*getAllowanceResponse, error) {
			res, err := s.rpcGetAllowance(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodTokenMint: handler.New(func(ctx context.Context, p supplyChangeParams) (*okResponse, error) {
			res, err := s.rpcMint(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodTokenBurn: handler.New(func(ctx context.Context, p supplyChangeParams) (*okResponse, error) {
			res, err := s.rpcBurn(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodRebaseSetOptOut: handler.New(func(ctx context.Context, p setOptOutParams) (*okResponse, error) {
			res, err := s.rpcSetOptOut(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodRebaseSetIndex: handler.New(func(ctx context.Context, p setIndexParams) (*okResponse, error) {
			res, err := s.rpcSetIndex(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodRebaseSyncIndex: handler.New(func(ctx context.Context, p syncIndexParams) (*okResponse, error) {
			res, err := s.rpcSyncIndex(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodBridgeSend: handler.New(func(ctx context.Context, p bridgeSendParams) (*okResponse, error) {
			res, err := s.rpcBridgeSend(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodTransportRetry: handler.New(func(ctx context.Context, p retryParams) (*okResponse, error) {
			res, err := s.rpcRetry(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		MethodHealthCheck: handler.New(func(ctx context.Context) (*healthCheckResponse, error) {
			return &healthCheckResponse{
				Status:         "ok",
				ChainID:        s.transport.ChainID(),
				MainChain:      s.bridge.IsMain(),
				SequenceNumber: s.ledger.SequenceNumber(),
			}, nil
		}),
	}
}

// --- Handlers ---

func (s *Server) rpcGetAccount(p getAccountRequest) (*getAccountResponse, *rpcError) {
	balance, err := s.ledger.BalanceOf(p.Address)
	if err != nil {
		return nil, wrapErr(err)
	}
	shares, err := s.ledger.SharesOf(p.Address)
	if err != nil {
		return nil, wrapErr(err)
	}
	optedOut, err := s.ledger.IsOptedOut(p.Address)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &getAccountResponse{
		Address:  p.Address,
		Balance:  utils.Uint256ToString(balance),
		Shares:   utils.Uint256ToString(shares),
		OptedOut: optedOut,
	}, nil
}

func (s *Server) rpcGetTotalSupply() (*getTotalSupplyResponse, *rpcError) {
	supply, err := s.ledger.TotalSupply()
	if err != nil {
		return nil, wrapErr(err)
	}
	return &getTotalSupplyResponse{
		TotalSupply:    utils.Uint256ToString(supply),
		TotalShares:    utils.Uint256ToString(s.ledger.TotalShares()),
		RebaseIndex:    utils.Uint256ToString(s.ledger.Index()),
		SequenceNumber: s.ledger.SequenceNumber(),
	}, nil
}

func (s *Server) rpcTransfer(p transferParams) (*okResponse, *rpcError) {
	amount, err := utils.ParseUint256(p.Amount)
	if err != nil {
		return nil, wrapErr(err)
	}
	spendsAllowance := p.Caller != "" && p.Caller != p.From
	if spendsAllowance {
		allowance, err := s.ledger.Base().Allowance(p.From, p.Caller)
		if err != nil {
			return nil, wrapErr(err)
		}
		if allowance.Cmp(amount) < 0 {
			return nil, wrapErr(errors.NewError(errors.ErrCodeInsufficientAllowance, errors.ErrMsgInsufficientAllowance))
		}
	}
	if err := s.ledger.ApplyUpdate(p.From, p.To, amount); err != nil {
		return nil, wrapErr(err)
	}
	// the allowance is consumed only once the balance update has gone through
	if spendsAllowance {
		if err := s.ledger.Base().SpendAllowance(p.From, p.Caller, amount); err != nil {
			return nil, wrapErr(err)
		}
	}
	return &okResponse{Ok: true}, nil
}

func (s *Server) rpcApprove(p approveParams) (*okResponse, *rpcError) {
	amount, err := utils.ParseUint256(p.Amount)
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := s.ledger.Base().Approve(p.Owner, p.Spender, amount); err != nil {
		return nil, wrapErr(err)
	}
	return &okResponse{Ok: true}, nil
}

func (s *Server) rpcGetAllowance(p getAllowanceRequest) (*getAllowanceResponse, *rpcError) {
	allowance, err := s.ledger.Base().Allowance(p.Owner, p.Spender)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &getAllowanceResponse{
		Owner:     p.Owner,
		Spender:   p.Spender,
		Allowance: utils.Uint256ToString(allowance),
	}, nil
}

func (s *Server) rpcMint(p supplyChangeParams) (*okResponse, *rpcError) {
	amount, err := utils.ParseUint256(p.Amount)
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := s.ledger.ApplyUpdate("", p.Account, amount); err != nil {
		return nil, wrapErr(err)
	}
	return &okResponse{Ok: true}, nil
}

func (s *Server) rpcBurn(p supplyChangeParams) (*okResponse, *rpcError) {
	amount, err := utils.ParseUint256(p.Amount)
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := s.ledger.ApplyUpdate(p.Account, "", amount); err != nil {
		return nil, wrapErr(err)
	}
	return &okResponse{Ok: true}, nil
}

func (s *Server) rpcSetOptOut(p setOptOutParams) (*okResponse, *rpcError) {
	if err := s.ctrl.SetOptOut(p.Account, p.Disable); err != nil {
		return nil, wrapErr(err)
	}
	return &okResponse{Ok: true}, nil
}

func (s *Server) rpcSetIndex(p setIndexParams) (*okResponse, *rpcError) {
	index, err := utils.ParseUint256(p.Index)
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := s.ctrl.SetIndex(p.Updater, index); err != nil {
		return nil, wrapErr(err)
	}
	return &okResponse{Ok: true}, nil
}

func (s *Server) rpcSyncIndex(p syncIndexParams) (*okResponse, *rpcError) {
	if s.sync == nil {
		return nil, wrapErr(errors.NewError(errors.ErrCodeInvalidRebaseIndexMutator, errors.ErrMsgInvalidRebaseIndexMutator))
	}
	index, err := utils.ParseUint256(p.Index)
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := s.sync.SyncIndex(index, p.SequenceNumber); err != nil {
		return nil, wrapErr(err)
	}
	return &okResponse{Ok: true}, nil
}

func (s *Server) rpcBridgeSend(p bridgeSendParams) (*okResponse, *rpcError) {
	amount, err := utils.ParseUint256(p.Amount)
	if err != nil {
		return nil, wrapErr(err)
	}
	toAddr, err := hex.DecodeString(p.To)
	if err != nil {
		return nil, wrapErr(err)
	}
	var adapterParams []byte
	if p.AdapterParams != "" {
		adapterParams, err = hex.DecodeString(p.AdapterParams)
		if err != nil {
			return nil, wrapErr(err)
		}
	}
	if err := s.bridge.Send(p.Caller, p.From, p.DstChain, toAddr, amount, adapterParams); err != nil {
		return nil, wrapErr(err)
	}
	return &okResponse{Ok: true}, nil
}

func (s *Server) rpcRetry(p retryParams) (*okResponse, *rpcError) {
	srcPath, err := hex.DecodeString(p.SrcPath)
	if err != nil {
		return nil, wrapErr(err)
	}
	payload, err := hex.DecodeString(p.Payload)
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := s.transport.Retry(p.SrcChain, srcPath, p.Sequence, payload); err != nil {
		return nil, wrapErr(err)
	}
	return &okResponse{Ok: true}, nil
}
