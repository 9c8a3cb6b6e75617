package borrow

import (
	"context"
	"fmt"

	"llama_lend/internal/errs"
	"llama_lend/internal/market"
	"llama_lend/internal/models"
	"llama_lend/internal/mutation"
	"llama_lend/internal/validation"
)

// Definitions — все виды транзакций форм займа и vault.
func (s *Service) Definitions() []mutation.Definition {
	return []mutation.Definition{
		s.leveraged(models.MutationCreateLoan, func(p Params) string {
			return fmt.Sprintf("Loan created: borrowed %s", p.Debt)
		}),
		s.leveraged(models.MutationBorrowMore, func(p Params) string {
			return fmt.Sprintf("Borrowed %s more", p.Debt)
		}),
		s.leveraged(models.MutationRepay, func(p Params) string {
			return fmt.Sprintf("Repaid %s", p.Debt)
		}),
		s.addCollateral(),
		s.removeCollateral(),
		s.stake(),
	}
}

// leveraged — операции, которые идут через резолвер вариантов.
func (s *Service) leveraged(kind models.MutationKind, success func(Params) string) mutation.Definition {
	return mutation.Definition{
		Kind: kind,
		Validate: func(p Params) error {
			return s.Flow(kind).validateWithUser(p)
		},
		Prepare: func(h market.Handle, p Params) (mutation.Action, error) {
			impl, err := market.Resolve(h, p.LeverageEnabled)
			if err != nil {
				return mutation.Action{}, err
			}
			fl, err := impl.Flow(kind)
			if err != nil {
				return mutation.Action{}, err
			}
			if err := fl.Precondition(p); err != nil {
				return mutation.Action{}, err
			}
			if fl.Variant() == market.VariantRouteLeverage {
				if _, err := s.routes.Require(p.RouteID); err != nil {
					return mutation.Action{}, err
				}
			}
			q := s.Flow(kind)
			return mutation.Action{
				Variant: fl.Variant(),
				// статус approve — узел с нулевой свежестью, каждое чтение идёт в сеть
				IsApproved: func(ctx context.Context) (bool, error) { return q.IsApproved.Fetch(ctx, p) },
				Approve:    func(ctx context.Context) ([]string, error) { return fl.Approve(ctx, p) },
				Execute:    func(ctx context.Context) (string, error) { return fl.Execute(ctx, p) },
			}, nil
		},
		Success: success,
	}
}

func loanAPI(h market.Handle, op string) (market.LoanAPI, error) {
	if h.Loan() == nil {
		return nil, errs.Configuration(op, "market %s has no loan surface", h.Info().ID)
	}
	return h.Loan(), nil
}

func (s *Service) addCollateral() mutation.Definition {
	return mutation.Definition{
		Kind: models.MutationAddCollateral,
		Validate: func(p Params) error {
			return validation.User(validation.Collateral(p), p.UserAddress).Err()
		},
		Prepare: func(h market.Handle, p Params) (mutation.Action, error) {
			api, err := loanAPI(h, "AddCollateral.Prepare")
			if err != nil {
				return mutation.Action{}, err
			}
			return mutation.Action{
				Variant:    market.VariantUnleveraged,
				IsApproved: func(ctx context.Context) (bool, error) { return s.Approvals.AddCollateral.Fetch(ctx, p) },
				Approve:    func(ctx context.Context) ([]string, error) { return api.AddCollateralApprove(ctx, p.UserCollateral) },
				Execute:    func(ctx context.Context) (string, error) { return api.AddCollateral(ctx, p.UserCollateral) },
			}, nil
		},
		Success: func(p Params) string { return fmt.Sprintf("Added %s collateral", p.UserCollateral) },
	}
}

// removeCollateral — без approve.
func (s *Service) removeCollateral() mutation.Definition {
	return mutation.Definition{
		Kind: models.MutationRemoveCollateral,
		Validate: func(p Params) error {
			return validation.User(validation.Collateral(p), p.UserAddress).Err()
		},
		Prepare: func(h market.Handle, p Params) (mutation.Action, error) {
			api, err := loanAPI(h, "RemoveCollateral.Prepare")
			if err != nil {
				return mutation.Action{}, err
			}
			return mutation.Action{
				Variant: market.VariantUnleveraged,
				Execute: func(ctx context.Context) (string, error) { return api.RemoveCollateral(ctx, p.UserCollateral) },
			}, nil
		},
		Success: func(p Params) string { return fmt.Sprintf("Removed %s collateral", p.UserCollateral) },
	}
}

// stake — депозит в vault, только lend-рынки.
func (s *Service) stake() mutation.Definition {
	return mutation.Definition{
		Kind: models.MutationStake,
		Validate: func(p Params) error {
			return validation.User(validation.Stake(p), p.UserAddress).Err()
		},
		Prepare: func(h market.Handle, p Params) (mutation.Action, error) {
			v, err := vaultAPI(h, "Stake.Prepare")
			if err != nil {
				return mutation.Action{}, err
			}
			return mutation.Action{
				Variant:    market.VariantUnleveraged,
				IsApproved: func(ctx context.Context) (bool, error) { return s.Approvals.Stake.Fetch(ctx, p) },
				Approve:    func(ctx context.Context) ([]string, error) { return v.StakeApprove(ctx, p.UserBorrowed) },
				Execute:    func(ctx context.Context) (string, error) { return v.Stake(ctx, p.UserBorrowed) },
			}, nil
		},
		Success: func(p Params) string { return fmt.Sprintf("Staked %s", p.UserBorrowed) },
	}
}

// Mutations создаёт мутации всех видов на одном оркестраторе.
func (s *Service) Mutations(o *mutation.Orchestrator) map[models.MutationKind]*mutation.Mutation {
	defs := s.Definitions()
	out := make(map[models.MutationKind]*mutation.Mutation, len(defs))
	for _, d := range defs {
		out[d.Kind] = o.Mutation(d)
	}
	return out
}
