package catalog

import "testing"

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.TeamFields) != 16 {
		t.Errorf("team fields = %d, want 16", len(c.TeamFields))
	}
	if len(c.RegistrationStats) != 7 || len(c.SeasonStats) != 2 {
		t.Errorf("stat layouts = %d/%d", len(c.RegistrationStats), len(c.SeasonStats))
	}

	for _, tc := range []struct {
		group, field string
		ok           bool
	}{
		{"ataque", "td_passado", true},
		{"passe", "td_passados", true},
		{"defesa", "flag_retirada", true},
		{"defesa", "tackles_totais", true},
		{"kicker", "fg_bons", true},
		{"ataque", "gols", false},
		{"basquete", "pontos", false},
	} {
		if _, ok := c.StatField(tc.group, tc.field); ok != tc.ok {
			t.Errorf("StatField(%s, %s) = %v, want %v", tc.group, tc.field, ok, tc.ok)
		}
	}

	if f, _ := c.StatField("kicker", "fg_mais_longo"); f.Type != "text" {
		t.Errorf("fg_mais_longo type = %q", f.Type)
	}
	if !c.IsSector("Special") || c.IsSector("Goleiro") {
		t.Error("sector lookup wrong")
	}
}

func TestParseRejectsBrokenCatalog(t *testing.T) {
	if _, err := Parse([]byte("sectors: [")); err == nil {
		t.Error("expected yaml error")
	}
	if _, err := Parse([]byte("team_fields: []")); err == nil {
		t.Error("expected missing sectors error")
	}
}
