package dto

// HealthResponse is the body of /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

// LoginForm is the body of POST /login
type LoginForm struct {
	UserName string `form:"userName" binding:"required,max=20"`
	Password string `form:"password" binding:"required,max=128"`
}

// SignupForm is the body of POST /signup
type SignupForm struct {
	UserName  string `form:"userName" binding:"required"`
	FirstName string `form:"firstName" binding:"max=100"`
	LastName  string `form:"lastName" binding:"max=100"`
	Password  string `form:"password" binding:"required"`
	Verify    string `form:"verify" binding:"required"`
	Email     string `form:"email" binding:"omitempty,max=200"`
}

// ProfileForm is the body of POST /profile
type ProfileForm struct {
	FirstName   string `form:"firstName" binding:"max=100"`
	LastName    string `form:"lastName" binding:"max=100"`
	SSN         string `form:"ssn" binding:"max=32"`
	DOB         string `form:"dob" binding:"max=32"`
	Address     string `form:"address" binding:"max=255"`
	BankAcc     string `form:"bankAcc" binding:"max=64"`
	BankRouting string `form:"bankRouting" binding:"max=64"`
	Website     string `form:"website" binding:"max=255"`
}

// ContributionsForm is the body of POST /contributions
type ContributionsForm struct {
	PreTax   string `form:"preTax" binding:"required"`
	AfterTax string `form:"afterTax" binding:"required"`
	Roth     string `form:"roth" binding:"required"`
}

// BenefitsForm is the body of POST /benefits
type BenefitsForm struct {
	UserID           string `form:"userId" binding:"required,uuid"`
	BenefitStartDate string `form:"benefitStartDate" binding:"required"`
}

// MemoForm is the body of POST /memos
type MemoForm struct {
	Memo string `form:"memo" binding:"required,max=1000"`
}
