package app

// Demo pairs a sample query with canonical names it must resolve to.
type Demo struct {
	Query string
	Want  []string
}

var Demos = []Demo{
	{"Tell me about the climate in Mumbay and Deli", []string{"Mumbai"}},
	{"What is the population of New York City and Los Angeles?", []string{"New York", "Los Angeles"}},
	{"Compare weather patterns between Mumbai, Delhi, and Bangalore", []string{"Mumbai", "Delhi"}},
	{"Show me a graph of rainfall for Chennai for the month of October", []string{"Chennai"}},
	{"Which saw higher rainfall, Maharashtra, Ahmedabad or entire New-Zealand?", []string{"Maharashtra", "Ahmedabad", "New Zealand"}},
}
