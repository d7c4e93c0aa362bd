package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mcoot/quizgame/internal/api/request"
	"github.com/mcoot/quizgame/internal/api/response"
	"github.com/mcoot/quizgame/internal/model"
)

// CreateBattle opens a private battle for a category
func (c *Client) CreateBattle(ctx context.Context, category model.CategoryCode) (model.CreatedBattle, error) {
	var resp response.BattleCreatedResponse
	if err := c.Post(ctx, "/api/battle/create", request.CategoryRequest{Category: string(category)}, &resp); err != nil {
		return model.CreatedBattle{}, err
	}
	return model.CreatedBattle{
		ID:             model.BattleID(resp.BattleID),
		Code:           model.BattleCode(resp.Code),
		Category:       model.CategoryCode(resp.Category),
		CategoryName:   resp.CategoryName,
		TotalQuestions: resp.TotalQuestions,
	}, nil
}

// JoinBattle joins a battle by its code
func (c *Client) JoinBattle(ctx context.Context, code model.BattleCode) (model.JoinedBattle, error) {
	var resp response.BattleJoinedResponse
	path := fmt.Sprintf("/api/battle/join/%s", url.PathEscape(string(code)))
	if err := c.Post(ctx, path, nil, &resp); err != nil {
		return model.JoinedBattle{}, err
	}
	return model.JoinedBattle{
		ID:       model.BattleID(resp.BattleID),
		Category: model.CategoryCode(resp.Category),
	}, nil
}

// EnterMatchmaking joins a waiting public battle or opens a new one
func (c *Client) EnterMatchmaking(ctx context.Context, category model.CategoryCode) (model.MatchmakingTicket, error) {
	var resp response.MatchmakingResponse
	if err := c.Post(ctx, "/api/battle/matchmaking", request.CategoryRequest{Category: string(category)}, &resp); err != nil {
		return model.MatchmakingTicket{}, err
	}
	return model.MatchmakingTicket{
		Matched:  resp.Matched,
		BattleID: model.BattleID(resp.BattleID),
		Code:     model.BattleCode(resp.Code),
	}, nil
}

// CancelBattle deletes a battle nobody has joined
func (c *Client) CancelBattle(ctx context.Context, id model.BattleID) error {
	return c.Post(ctx, fmt.Sprintf("/api/battle/cancel/%d", id), nil, nil)
}

// Battle fetches a battle snapshot
func (c *Client) Battle(ctx context.Context, id model.BattleID) (model.Battle, error) {
	var resp response.BattleResponse
	if err := c.Get(ctx, fmt.Sprintf("/api/battle/%d", id), &resp); err != nil {
		return model.Battle{}, err
	}
	return resp.ToModel(), nil
}
