package server

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"kincore/app/models"
	"kincore/app/wallet"
	"kincore/pkg/kinerr"
	"kincore/pkg/log"
	"kincore/pkg/web"
)

const (
	apiPrefix = "/api/v1"
)

// Rest is a gateway for incoming HTTP requests
type Rest struct {
	Router chi.Router
	Wallet wallet.Service
}

func (s *Rest) Route() {
	s.Router.Route(apiPrefix, func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", s.createAccount)
			r.Get("/", s.listAccounts)

			r.Route("/{address}", func(r chi.Router) {
				r.Get("/balance", s.getBalance)
				r.Get("/balance/pending", s.getPendingBalance)
				r.Post("/transfer", s.sendTransaction)
				r.Post("/export", s.exportKey)
			})
		})
	})
}

func (s *Rest) createAccount(w http.ResponseWriter, r *http.Request) {
	in := new(models.NewAccount)
	if err := render.DecodeJSON(r.Body, in); err != nil {
		web.RenderError(w, r, kinerr.InvalidArgument(err.Error()))
		return
	}

	account, err := s.Wallet.CreateAccount(in.Passphrase)
	if err != nil {
		web.RenderError(w, r, err)
		return
	}
	log.AddFields(r.Context(), "address", account.PublicAddress())

	render.Status(r, http.StatusCreated)
	web.RenderResult(w, r, &models.PublicAccount{Address: account.PublicAddress()})
}

func (s *Rest) listAccounts(w http.ResponseWriter, r *http.Request) {
	out := &models.AccountList{Accounts: []*models.PublicAccount{}}
	for _, a := range s.Wallet.Accounts() {
		out.Accounts = append(out.Accounts, &models.PublicAccount{Address: a.PublicAddress()})
	}

	web.RenderResult(w, r, out)
}

func (s *Rest) getBalance(w http.ResponseWriter, r *http.Request) {
	account, err := s.account(r)
	if err != nil {
		web.RenderError(w, r, err)
		return
	}

	out, err := account.GetBalanceSync(r.Context())
	if err != nil {
		web.RenderError(w, r, err)
		return
	}

	web.RenderResult(w, r, out)
}

func (s *Rest) getPendingBalance(w http.ResponseWriter, r *http.Request) {
	account, err := s.account(r)
	if err != nil {
		web.RenderError(w, r, err)
		return
	}

	out, err := account.GetPendingBalanceSync(r.Context())
	if err != nil {
		web.RenderError(w, r, err)
		return
	}

	web.RenderResult(w, r, out)
}

func (s *Rest) sendTransaction(w http.ResponseWriter, r *http.Request) {
	account, err := s.account(r)
	if err != nil {
		web.RenderError(w, r, err)
		return
	}

	in := new(models.NewTransfer)
	if err := render.DecodeJSON(r.Body, in); err != nil {
		web.RenderError(w, r, kinerr.InvalidArgument(err.Error()))
		return
	}

	txID, err := account.SendTransactionSync(r.Context(), in.ToAddress, in.Passphrase, in.Amount)
	if err != nil {
		web.RenderError(w, r, err)
		return
	}

	web.RenderResult(w, r, &models.SentTransfer{TxID: txID})
}

func (s *Rest) exportKey(w http.ResponseWriter, r *http.Request) {
	account, err := s.account(r)
	if err != nil {
		web.RenderError(w, r, err)
		return
	}

	in := new(models.ExportRequest)
	if err := render.DecodeJSON(r.Body, in); err != nil {
		web.RenderError(w, r, kinerr.InvalidArgument(err.Error()))
		return
	}

	key, err := account.PrivateKey(in.Passphrase)
	if err != nil {
		web.RenderError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	web.RenderResult(w, r, &models.ExportedKey{Address: account.PublicAddress(), PrivateKey: key})
}

// account resolves the path address to an entry of the key store.
func (s *Rest) account(r *http.Request) (*wallet.Account, error) {
	address := chi.URLParam(r, "address")
	log.AddFields(r.Context(), "address", address)
	return s.Wallet.GetAccount(address)
}
