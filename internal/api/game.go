package api

import (
	"context"

	"github.com/mcoot/quizgame/internal/api/request"
	"github.com/mcoot/quizgame/internal/api/response"
	"github.com/mcoot/quizgame/internal/model"
)

// Categories lists playable categories
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var resp response.CategoriesResponse
	if err := c.Get(ctx, "/api/matieres", &resp); err != nil {
		return nil, err
	}
	categories := make([]model.Category, 0, len(resp.Categories))
	for _, cat := range resp.Categories {
		categories = append(categories, cat.ToModel())
	}
	return categories, nil
}

// CategoryGroups lists the category groups used by mixed and revision modes
func (c *Client) CategoryGroups(ctx context.Context) ([]model.CategoryGroup, error) {
	var resp response.GroupsResponse
	if err := c.Get(ctx, "/api/categories", &resp); err != nil {
		return nil, err
	}
	groups := make([]model.CategoryGroup, 0, len(resp.Groups))
	for _, g := range resp.Groups {
		groups = append(groups, g.ToModel())
	}
	return groups, nil
}

// Stats returns progress within a category
func (c *Client) Stats(ctx context.Context, category model.CategoryCode) (model.Stats, error) {
	var resp response.StatsResponse
	if err := c.Post(ctx, "/api/stats", request.CategoryRequest{Category: string(category)}, &resp); err != nil {
		return model.Stats{}, err
	}
	return resp.ToModel(), nil
}

// HasSavedGame reports whether a resumable game exists for the category
func (c *Client) HasSavedGame(ctx context.Context, category model.CategoryCode) (bool, error) {
	var resp response.CheckSavedResponse
	if err := c.Post(ctx, "/api/check_saved", request.CategoryRequest{Category: string(category)}, &resp); err != nil {
		return false, err
	}
	return resp.HasSavedGame, nil
}

// Start begins a new game session, replacing any saved one
func (c *Client) Start(ctx context.Context, opts model.StartOptions) (model.GameInfo, error) {
	req := request.StartRequest{
		Category:         string(opts.Category),
		TimerMinutes:     opts.TimerMinutes,
		Mode:             string(opts.Mode),
		Group:            opts.Group,
		RevisionCategory: opts.RevisionGroup,
	}
	var resp response.GameResponse
	if err := c.Post(ctx, "/api/start", req, &resp); err != nil {
		return model.GameInfo{}, err
	}
	return resp.ToModel(), nil
}

// Restore resumes the saved game for a category
func (c *Client) Restore(ctx context.Context, category model.CategoryCode) (model.GameInfo, error) {
	var resp response.GameResponse
	if err := c.Post(ctx, "/api/restore", request.CategoryRequest{Category: string(category)}, &resp); err != nil {
		return model.GameInfo{}, err
	}
	return resp.ToModel(), nil
}

// TimeRemaining returns the server-computed timer state
func (c *Client) TimeRemaining(ctx context.Context) (model.TimeRemaining, error) {
	var resp response.TimeRemainingResponse
	if err := c.Get(ctx, "/api/time_remaining", &resp); err != nil {
		return model.TimeRemaining{}, err
	}
	return model.TimeRemaining{
		Enabled:          resp.TimerEnabled,
		RemainingSeconds: resp.RemainingSeconds,
		Expired:          resp.IsExpired,
	}, nil
}

// Question fetches the current question, or the finished marker
func (c *Client) Question(ctx context.Context) (model.QuestionState, error) {
	var resp response.QuestionResponse
	if err := c.Get(ctx, "/api/question", &resp); err != nil {
		return model.QuestionState{}, err
	}
	return resp.ToModel(), nil
}

// Answer accepts or rejects the proposed answer
func (c *Client) Answer(ctx context.Context, accept bool) (model.AnswerResult, error) {
	var resp response.AnswerResponse
	if err := c.Post(ctx, "/api/answer", request.AnswerRequest{Answer: accept}, &resp); err != nil {
		return model.AnswerResult{}, err
	}
	return resp.ToModel(), nil
}

// StartRevision restarts the session with the questions to revise
func (c *Client) StartRevision(ctx context.Context) (int, error) {
	var resp response.RevisionResponse
	if err := c.Post(ctx, "/api/start_revision", nil, &resp); err != nil {
		return 0, err
	}
	return resp.TotalQuestions, nil
}

// Save persists the running game
func (c *Client) Save(ctx context.Context) (string, error) {
	var resp response.SuccessResponse
	if err := c.Post(ctx, "/api/save", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// CompleteGame records the finished game and credits its score
func (c *Client) CompleteGame(ctx context.Context) error {
	return c.Post(ctx, "/api/complete_game", nil, nil)
}

// Leaderboard returns the best timed games for a category
func (c *Client) Leaderboard(ctx context.Context, category model.CategoryCode) (model.Leaderboard, error) {
	var resp response.ScoresResponse
	if err := c.Post(ctx, "/api/scores", request.CategoryRequest{Category: string(category)}, &resp); err != nil {
		return model.Leaderboard{}, err
	}
	board := model.Leaderboard{
		Category:     model.CategoryCode(resp.Category),
		CategoryName: resp.CategoryName,
		Entries:      make([]model.ScoreEntry, 0, len(resp.Scores)),
	}
	for _, s := range resp.Scores {
		board.Entries = append(board.Entries, model.ScoreEntry{Username: s.Username, Score: s.Score, Date: s.Date})
	}
	return board, nil
}

// GlobalLeaderboard ranks users by total points
func (c *Client) GlobalLeaderboard(ctx context.Context) (model.GlobalLeaderboard, error) {
	var resp response.TotalScoresResponse
	if err := c.Post(ctx, "/api/scores/total", nil, &resp); err != nil {
		return model.GlobalLeaderboard{}, err
	}
	board := model.GlobalLeaderboard{
		CurrentUserScore: resp.CurrentUserScore,
		Entries:          make([]model.TotalScoreEntry, 0, len(resp.Scores)),
	}
	for _, s := range resp.Scores {
		board.Entries = append(board.Entries, model.TotalScoreEntry{
			Username:    s.Username,
			TotalScore:  s.TotalScore,
			GamesPlayed: s.GamesPlayed,
		})
	}
	return board, nil
}

// HintCount returns the user's hint balance
func (c *Client) HintCount(ctx context.Context) (int, error) {
	var resp response.HintCountResponse
	if err := c.Get(ctx, "/api/user/hints", &resp); err != nil {
		return 0, err
	}
	return resp.HintsCount, nil
}

// UseHint reveals whether the current proposed answer is correct
func (c *Client) UseHint(ctx context.Context) (model.HintResult, error) {
	var resp response.HintResponse
	if err := c.Post(ctx, "/api/game/use_hint", nil, &resp); err != nil {
		return model.HintResult{}, err
	}
	return model.HintResult{
		Correct:        resp.IsCorrect,
		HintsRemaining: resp.HintsRemaining,
		Message:        resp.Message,
	}, nil
}
