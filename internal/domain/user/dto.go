package user

type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,max=100"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      Role   `json:"role"`
	Name      string `json:"name" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Mobile    string `json:"mobile" binding:"required,max=20"`
	ManagerID *int64 `json:"manager_id"`
}

type ListFilters struct {
	Role Role `form:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
