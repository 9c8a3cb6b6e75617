package borrow

import (
	"context"

	"llama_lend/internal/errs"
	"llama_lend/internal/market"
	"llama_lend/internal/models"
	"llama_lend/internal/query"
	"llama_lend/internal/validation"
)

// ApprovalQueries — статус approve для операций без графа котировок.
// Как и у FlowQueries.IsApproved, свежесть нулевая.
type ApprovalQueries struct {
	AddCollateral *query.Node[Params, bool]
	Stake         *query.Node[Params, bool]
}

func newApprovalQueries(s *Service) *ApprovalQueries {
	return &ApprovalQueries{
		AddCollateral: approvalNode(s, "addCollateral.isApproved", models.FieldUserCollateral,
			func(ctx context.Context, h market.Handle, p Params) (bool, error) {
				api, err := loanAPI(h, "AddCollateral.IsApproved")
				if err != nil {
					return false, err
				}
				return api.AddCollateralIsApproved(ctx, p.UserCollateral)
			}),
		Stake: approvalNode(s, "stake.isApproved", models.FieldUserBorrowed,
			func(ctx context.Context, h market.Handle, p Params) (bool, error) {
				v, err := vaultAPI(h, "Stake.IsApproved")
				if err != nil {
					return false, err
				}
				return v.StakeIsApproved(ctx, p.UserBorrowed)
			}),
	}
}

func approvalNode(s *Service, name string, amount models.Field,
	read func(ctx context.Context, h market.Handle, p Params) (bool, error)) *query.Node[Params, bool] {
	return query.NewNode(s.client, query.Options[Params, bool]{
		Name: name,
		Key: func(p Params) string {
			return p.KeyOf(models.FieldChain, models.FieldMarket, models.FieldUser, amount)
		},
		Validate: func(p Params) error {
			return validation.User(validation.New(), p.UserAddress).Err()
		},
		StaleTime: 0,
		Fetch: func(ctx context.Context, p Params) (bool, error) {
			h, err := s.registry.Market(p.ChainID, p.MarketID)
			if err != nil {
				return false, err
			}
			return read(ctx, h, p)
		},
	})
}

// vaultAPI — vault есть только у lend-рынков.
func vaultAPI(h market.Handle, op string) (market.VaultAPI, error) {
	info := h.Info()
	if info.Kind != models.MarketLend || h.Vault() == nil {
		return nil, errs.Configuration(op, "market %s has no vault", info.ID)
	}
	return h.Vault(), nil
}
