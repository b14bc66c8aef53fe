package util

import "testing"

func TestMatchesQuerySingleWord(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		matches bool
	}{
		{"Dąbie", "Dąbie", true},
		{"Dąbie", "dą", true},
		{"Dąbie", "bie", true},
		{"Teatr Bagatela", "bagate", true},
		{"Dąbie", "Dąbiec", false},
		{"Teatr Bagatela", "Teatr Słow", false},
	}

	for _, testCase := range testCases {
		if got := MatchesQuery(testCase.name, testCase.query); got != testCase.matches {
			t.Errorf("MatchesQuery(%q, %q) = %v, want %v", testCase.name, testCase.query, got, testCase.matches)
		}
	}
}

func TestMatchesQueryMultipleWords(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		matches bool
	}{
		{"Teatr Bagatela", "t b", true},
		{"Teatr Bagatela", "te ba", true},
		{"Teatr Bagatela", "t baga", true},
		{"Dworzec Główny Zachód", "d g z", true},
		{"Dworzec Główny Zachód", "d z", true},
		{"Dworzec Główny Zachód", "d z x", false},
		{"Dworzec Główny Zachód", "d g w", false},
		{"Teatr Bagatela", "t Bagr", false},
	}

	for _, testCase := range testCases {
		if got := MatchesQuery(testCase.name, testCase.query); got != testCase.matches {
			t.Errorf("MatchesQuery(%q, %q) = %v, want %v", testCase.name, testCase.query, got, testCase.matches)
		}
	}
}

func TestMatchesQueryAccents(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		matches bool
	}{
		{"Dworzec Główny Zachód", "d gl", true},
		{"Dworzec Główny Zachód", "Glowny", true},
		{"Zażółć gęślą jaźń", "zazolc gesla jazn", true},
		{"Gojazni đačić s biciklom drži hmelj i finu vatu u džepu nošnje", "Gojazni djacic s biciklom drzi hmelj i finu vatu u dzepu nosnje", true},
		{"Příliš žluťoučký kůň úpěl ďábelské ódy", "Prilis zlutoucky kun upel djabelske ody", true},
		{"quäkt Jürgen blöd vom Paß", "quakt Jurgen blod vom Pas", true},
		{"Árvíztűrő tükörfúrógép", "arvizturo tukorfurogep", true},
	}

	for _, testCase := range testCases {
		if got := MatchesQuery(testCase.name, testCase.query); got != testCase.matches {
			t.Errorf("MatchesQuery(%q, %q) = %v, want %v", testCase.name, testCase.query, got, testCase.matches)
		}
	}
}

func TestFoldAccents(t *testing.T) {
	if got := FoldAccents("Zażółć"); got != "Zazolc" {
		t.Errorf("FoldAccents(Zażółć) = %q, want Zazolc", got)
	}
	if got := FoldAccents("plain"); got != "plain" {
		t.Errorf("FoldAccents(plain) = %q, want plain", got)
	}
}
