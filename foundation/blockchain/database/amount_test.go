package database_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ardanlabs/kcoin/foundation/blockchain/database"
)

func Test_ParseAmount(t *testing.T) {
	type table struct {
		literal string
		exp     database.Amount
	}

	// Expected values are what json.dumps(json.loads(literal)) writes.
	tt := []table{
		{literal: "1.0", exp: "1.0"},
		{literal: "1", exp: "1"},
		{literal: "2.50", exp: "2.5"},
		{literal: "1E5", exp: "100000.0"},
		{literal: "1e16", exp: "1e+16"},
		{literal: "1e15", exp: "1000000000000000.0"},
		{literal: "0.0001", exp: "0.0001"},
		{literal: "0.00001", exp: "1e-05"},
		{literal: "1.5e-7", exp: "1.5e-07"},
		{literal: "-0", exp: "0"},
		{literal: "-0.0", exp: "-0.0"},
		{literal: "1e-400", exp: "0.0"},
		{literal: "12345678901234567891", exp: "12345678901234567891"},
		{literal: "123456789012345678901.5", exp: "1.2345678901234568e+20"},
	}

	t.Log("Given the need to keep amounts in the form Python writes them.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen parsing %s.", testID, tst.literal)
			{
				got, err := database.ParseAmount(tst.literal)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to parse the amount: %v", failed, testID, err)
				}
				if got != tst.exp {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould get the written form.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get the written form.", success, testID)
			}
		}

		testID := len(tt)
		t.Logf("\tTest %d:\tWhen parsing values that aren't numbers.", testID)
		{
			for _, literal := range []string{"", `"5"`, "abc", "true", "1e400", "01"} {
				if _, err := database.ParseAmount(literal); !errors.Is(err, database.ErrInvalidAmount) {
					t.Fatalf("\t%s\tTest %d:\tShould reject %q, got %v.", failed, testID, literal, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould reject them.", success, testID)

			var tx database.Transaction
			if err := json.Unmarshal([]byte(`{"sender": "a", "receiver": "b", "amount": "5"}`), &tx); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject an amount sent as a string.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject an amount sent as a string.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen formatting floats.", testID)
		{
			for f, exp := range map[float64]database.Amount{10: "10.0", 2.5: "2.5", 1e16: "1e+16", 0: "0.0"} {
				if got := database.FloatAmount(f); got != exp {
					t.Fatalf("\t%s\tTest %d:\tShould format %v as %s, got %s.", failed, testID, f, exp, got)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould format floats as Python does.", success, testID)
		}
	}
}
