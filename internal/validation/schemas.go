package validation

// Request schemas shared by the router.
var (
	LoginSchema = Schema{
		{Name: "email", Rules: []Rule{Required{}, Email{}}},
		{Name: "password", Rules: []Rule{Required{}, MinLength{N: 6}}},
	}

	RegisterSchema = Schema{
		{Name: "name", Rules: []Rule{Required{}, MinLength{N: 2}, MaxLength{N: 50}}},
		{Name: "email", Rules: []Rule{Required{}, Email{}}},
		{Name: "password", Rules: []Rule{Required{}, Password{}}},
		{Name: "confirmPassword", Rules: []Rule{Required{}, MinLength{N: 6}}},
	}

	ProductCreateSchema = Schema{
		{Name: "name", Rules: []Rule{Required{}, MinLength{N: 2}, MaxLength{N: 100}}},
		{Name: "description", Rules: []Rule{Required{}, MaxLength{N: 1000}}},
		{Name: "price", Rules: []Rule{Required{}, Numeric{}}},
		{Name: "category", Rules: []Rule{Required{}}},
		{Name: "stock", Rules: []Rule{Required{}, Numeric{}}},
	}

	ProductUpdateSchema = Schema{
		{Name: "name", Rules: []Rule{MinLength{N: 2}, MaxLength{N: 100}}},
		{Name: "description", Rules: []Rule{MaxLength{N: 1000}}},
		{Name: "price", Rules: []Rule{Numeric{}}},
		{Name: "stock", Rules: []Rule{Numeric{}}},
	}

	StockAdjustSchema = Schema{
		{Name: "delta", Rules: []Rule{Required{}, Numeric{}}},
	}

	UserUpdateSchema = Schema{
		{Name: "name", Rules: []Rule{MinLength{N: 2}, MaxLength{N: 50}}},
		{Name: "email", Rules: []Rule{Email{}}},
	}
)
