package categorize

// Keyword lists are matched as lowercase substrings of the title.

var airlineKeywords = []string{
	"airline", "airlines", "flight", "flights", "flying",
	"airport", "airports", "aviation", "pilot", "cabin crew",
	"first class", "business class", "economy class", "boarding", "lounge",
	"mile", "miles", "frequent flyer",
	"delta", "united", "american airlines", "southwest", "jetblue",
	"spirit", "frontier", "alaska airlines", "british airways", "lufthansa",
	"emirates", "qatar", "singapore airlines", "cathay pacific", "air france",
	"klm", "ryanair", "easyjet", "qantas", "air canada",
	"aeroplan", "skymiles", "mileageplus", "aadvantage", "avios",
	"jet fuel", "airbus", "boeing",
	"a321", "a350", "a380", "777", "787", "737",
}

var hotelKeywords = []string{
	"hotel", "hotels", "resort", "resorts",
	"marriott", "hilton", "hyatt", "ihg", "accor",
	"wyndham", "best western", "four seasons", "ritz-carlton", "st. regis",
	"w hotel", "sheraton", "westin",
	"bonvoy", "honors", "world of hyatt",
	"suite", "suites", "check-in", "checkout", "concierge",
	"room upgrade", "all-inclusive", "hostel", "airbnb",
	"vacation rental", "boutique hotel",
}

var bonusKeywords = []string{
	"bonus", "bonuses", "deal", "deals", "offer", "offers",
	"promotion", "promotions", "promo",
	"discount", "discounts", "sale", "flash sale",
	"limited time", "save", "savings", "% off", "percent off",
	"free night", "free nights",
	"earn extra", "extra points", "bonus points", "transfer bonus",
	"sign-up bonus", "signup bonus", "welcome offer", "welcome bonus",
	"elevated offer", "increased offer", "limited-time",
	"reward", "rewards", "cashback", "cash back",
	"credit card offer", "annual fee", "waived", "complimentary",
	"upgrade offer",
}
