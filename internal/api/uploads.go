package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/valyala/fasthttp"
)

// Upload is a spreadsheet forwarded to the league API.
type Upload struct {
	Filename string
	Data     []byte
}

// GameSheet identifies the game a statistics spreadsheet belongs to.
type GameSheet struct {
	GameID   string
	GameDate string
}

func (c *LeagueClient) ImportTeams(ctx context.Context, file Upload) (json.RawMessage, error) {
	return c.postForm(ctx, "POST /importar-times", "/importar-times", file, nil)
}

func (c *LeagueClient) ImportPlayers(ctx context.Context, file Upload) (json.RawMessage, error) {
	return c.postForm(ctx, "POST /importar-jogadores", "/importar-jogadores", file, nil)
}

func (c *LeagueClient) UpdateStatistics(ctx context.Context, file Upload, game GameSheet) (json.RawMessage, error) {
	return c.postForm(ctx, "POST /atualizar-estatisticas", "/atualizar-estatisticas", file, [][2]string{
		{"id_jogo", game.GameID},
		{"data_jogo", game.GameDate},
	})
}

// ReprocessGame reverts a processed game's statistics and applies the new sheet.
func (c *LeagueClient) ReprocessGame(ctx context.Context, file Upload, game GameSheet, force bool) (json.RawMessage, error) {
	return c.postForm(ctx, "POST /reprocessar-jogo", "/reprocessar-jogo", file, [][2]string{
		{"id_jogo", game.GameID},
		{"data_jogo", game.GameDate},
		{"force", strconv.FormatBool(force)},
	})
}

func (c *LeagueClient) postForm(ctx context.Context, endpoint, path string, file Upload, fields [][2]string) (json.RawMessage, error) {
	body, contentType, err := encodeMultipart(file, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s form: %w", endpoint, err)
	}

	raw, err := c.do(ctx, request{
		endpoint:    endpoint,
		method:      fasthttp.MethodPost,
		path:        path,
		contentType: contentType,
		body:        body,
	})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

func encodeMultipart(file Upload, fields [][2]string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("arquivo", file.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
