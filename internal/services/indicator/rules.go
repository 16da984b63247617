package indicator

// DefaultRules returns the built-in rule table, grouped by currency. Earlier
// entries take priority, so a broad pattern listed first shadows a narrower
// one further down (e.g. "CPI YoY" catches "Core CPI YoY" titles).
func DefaultRules() []Rule {
	return MustCompile([]RuleSpec{
		// USD
		{"Non-Farm Payrolls (NFP)", `Non[- ]?Farm(?: Payrolls)?|Nonfarm Payrolls`},
		{"Federal Funds Rate Decision", `Federal Funds Rate|Fed Rate|FOMC.*Rate`},
		{"CPI YoY", `\bCPI\b.*\bYoY\b|Consumer Price Index.*YoY`},
		{"Core CPI YoY", `Core.*CPI.*YoY`},
		{"GDP QoQ", `\bGDP(\s+Growth)?\s*Rate?.*\bQoQ\b`},
		{"Unemployment Rate", `Unemployment Rate`},
		{"Initial Jobless Claims", `Initial Jobless Claims`},
		{"ISM Manufacturing PMI", `ISM.*Manufacturing.*PMI`},
		{"Retail Sales MoM", `Retail Sales.*MoM`},
		{"Core PCE YoY", `\bCore PCE\b.*YoY`},
		{"FOMC Minutes", `FOMC.*Minutes`},
		{"Trade Balance", `Trade Balance`},

		// EUR
		{"ECB Interest Rate Decision", `ECB.*(Rate|Interest).*Decision|Deposit Facility`},
		{"Eurozone CPI YoY", `Eurozone.*CPI.*YoY|Euro.*CPI.*YoY`},
		{"Eurozone GDP QoQ", `Eurozone.*GDP.*QoQ|Euro.*GDP.*QoQ`},
		{"Eurozone Unemployment Rate", `Eurozone.*Unemployment|Euro.*Unemployment`},
		{"German IFO Business Climate", `German.*IFO|IFO.*Business.*Climate`},
		{"German Manufacturing PMI", `German.*Manufacturing.*PMI`},
		{"Eurozone Retail Sales MoM", `Eurozone.*Retail.*Sales|Euro.*Retail.*Sales`},
		{"German ZEW Economic Sentiment", `German.*ZEW|ZEW.*Economic.*Sentiment`},
		{"ECB Press Conference", `ECB.*Press.*Conference`},
		{"Eurozone Trade Balance", `Eurozone.*Trade.*Balance|Euro.*Trade.*Balance`},
		{"German Industrial Production MoM", `German.*Industrial.*Production`},

		// GBP
		{"BoE Interest Rate", `Bank of England|BoE.*(Rate|Interest).*Decision`},
		{"UK CPI YoY", `UK.*CPI.*YoY|United Kingdom.*CPI.*YoY`},
		{"UK GDP QoQ", `UK.*GDP.*QoQ|United Kingdom.*GDP.*QoQ`},
		{"UK Employment Change", `UK.*Employment.*Change|United Kingdom.*Employment.*Change`},
		{"UK Retail Sales MoM", `UK.*Retail.*Sales|United Kingdom.*Retail.*Sales`},
		{"UK Manufacturing PMI", `UK.*Manufacturing.*PMI|United Kingdom.*Manufacturing.*PMI`},
		{"UK Services PMI", `UK.*Services.*PMI|United Kingdom.*Services.*PMI`},
		{"UK Trade Balance", `UK.*Trade.*Balance|United Kingdom.*Trade.*Balance`},
		{"BoE MPC Vote", `BoE.*MPC.*Vote|Bank of England.*MPC`},
		{"UK Industrial Production MoM", `UK.*Industrial.*Production|United Kingdom.*Industrial.*Production`},
		{"UK Average Earnings Index", `UK.*Average.*Earnings|United Kingdom.*Average.*Earnings`},

		// JPY
		{"BoJ Interest Rate", `Bank of Japan|BoJ.*(Rate|Policy|YCC)`},
		{"Japan CPI YoY", `Japan.*CPI.*YoY`},
		{"Japan GDP QoQ", `Japan.*GDP.*QoQ`},
		{"Japan Unemployment Rate", `Japan.*Unemployment.*Rate`},
		{"Japan Trade Balance", `Japan.*Trade.*Balance`},
		{"Japan Manufacturing PMI", `Japan.*Manufacturing.*PMI`},
		{"Japan Industrial Production MoM", `Japan.*Industrial.*Production`},
		{"Japan Retail Sales YoY", `Japan.*Retail.*Sales.*YoY`},
		{"Tankan Large Manufacturing Index", `Tankan.*Large.*Manufacturing`},
		{"Japan Current Account", `Japan.*Current.*Account`},
		{"BoJ Press Conference", `BoJ.*Press.*Conference|Bank of Japan.*Press`},

		// AUD
		{"RBA Interest Rate Decision", `RBA.*(Cash|Interest) Rate|Policy Decision`},
		{"Australia CPI QoQ", `Australia.*CPI.*QoQ`},
		{"Australia GDP QoQ", `Australia.*GDP.*QoQ`},
		{"Australia Employment Change", `Australia.*Employment.*Change`},
		{"Australia Unemployment Rate", `Australia.*Unemployment.*Rate`},
		{"Australia Retail Sales MoM", `Australia.*Retail.*Sales`},
		{"Australia Trade Balance", `Australia.*Trade.*Balance`},
		{"RBA Minutes", `RBA.*Minutes`},
		{"Australia Manufacturing PMI", `Australia.*Manufacturing.*PMI`},
		{"Australia Building Permits MoM", `Australia.*Building.*Permits`},
		{"Australia Westpac Consumer Sentiment", `Australia.*Westpac.*Consumer.*Sentiment`},

		// CAD
		{"BoC Interest Rate", `Bank of Canada|BoC.*Rate Decision`},
		{"Canada CPI YoY", `Canada.*CPI.*YoY`},
		{"Canada GDP MoM", `Canada.*GDP.*MoM`},
		{"Canada Employment Change", `Canada.*Employment.*Change`},
		{"Canada Unemployment Rate", `Canada.*Unemployment.*Rate`},
		{"Canada Retail Sales MoM", `Canada.*Retail.*Sales`},
		{"Canada Trade Balance", `Canada.*Trade.*Balance`},
		{"Canada Manufacturing PMI", `Canada.*Manufacturing.*PMI`},
		{"Canada Industrial Product Price MoM", `Canada.*Industrial.*Product.*Price`},
		{"Canada Housing Starts", `Canada.*Housing.*Starts`},
		{"Canada Ivey PMI", `Canada.*Ivey.*PMI`},

		// CHF
		{"SNB Interest Rate Decision", `SNB.*(Policy|Interest) Rate`},
		{"Switzerland CPI YoY", `Switzerland.*CPI.*YoY`},
		{"Switzerland GDP QoQ", `Switzerland.*GDP.*QoQ`},
		{"Switzerland Unemployment Rate", `Switzerland.*Unemployment.*Rate`},
		{"Switzerland Trade Balance", `Switzerland.*Trade.*Balance`},
		{"Switzerland Manufacturing PMI", `Switzerland.*Manufacturing.*PMI`},
		{"Switzerland Retail Sales YoY", `Switzerland.*Retail.*Sales.*YoY`},
		{"SNB Quarterly Bulletin", `SNB.*Quarterly.*Bulletin`},
		{"Switzerland Industrial Production YoY", `Switzerland.*Industrial.*Production.*YoY`},
		{"Switzerland Consumer Confidence", `Switzerland.*Consumer.*Confidence`},

		// NZD
		{"RBNZ Interest Rate Decision", `RBNZ.*(Interest|Policy) Rate.*Decision`},
		{"New Zealand CPI QoQ", `New Zealand.*CPI.*QoQ`},
		{"New Zealand GDP QoQ", `New Zealand.*GDP.*QoQ`},
		{"New Zealand Employment Change", `New Zealand.*Employment.*Change`},
		{"New Zealand Unemployment Rate", `New Zealand.*Unemployment.*Rate`},
		{"New Zealand Trade Balance", `New Zealand.*Trade.*Balance`},
		{"New Zealand Retail Sales QoQ", `New Zealand.*Retail.*Sales.*QoQ`},
		{"RBNZ Monetary Policy Statement", `RBNZ.*Monetary.*Policy.*Statement`},
		{"New Zealand Manufacturing PMI", `New Zealand.*Manufacturing.*PMI`},
		{"New Zealand Building Permits MoM", `New Zealand.*Building.*Permits`},
		{"New Zealand Consumer Confidence", `New Zealand.*Consumer.*Confidence`},
	})
}

// invertedKeywords mark releases where a higher print is bad for the
// currency.
var invertedKeywords = []string{"unemployment", "jobless", "claims"}
