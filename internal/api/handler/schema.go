package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	FullName        string `json:"full_name"        validate:"required,max=200"`
	Email           string `json:"email"            validate:"required,email"`
	Password        string `json:"password"         validate:"required,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type resultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type emailExistsResponse struct {
	Email  string `json:"email"`
	Exists bool   `json:"exists"`
}

type userResponse struct {
	ID             string   `json:"id"`
	FullName       string   `json:"full_name"`
	Email          string   `json:"email"`
	ProfilePicture string   `json:"profile_picture,omitempty"`
	Roles          []string `json:"roles"`
}

type profilePictureResponse struct {
	ProfilePicture string `json:"profile_picture"`
}

// --- Tickets ---

type createTicketRequest struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Tags        []string `json:"tags"`
}

type updateTicketRequest struct {
	Title       *string  `json:"title"       validate:"omitempty,max=200"`
	Description *string  `json:"description"`
	Priority    *string  `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Tags        []string `json:"tags"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

type assignRequest struct {
	// Assignee is a user id; null or omitted clears the assignment.
	Assignee *string `json:"assignee" validate:"omitempty,uuid"`
}

type ticketLinks struct {
	Self     string `json:"self"`
	Comments string `json:"comments"`
}

type ticketResponse struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	Tags        []string    `json:"tags"`
	CreatedBy   string      `json:"created_by"`
	AssignedTo  string      `json:"assigned_to,omitempty"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
	Links       ticketLinks `json:"_links"`
}

type listTicketsResponse struct {
	Items []ticketResponse `json:"items"`
	Count int              `json:"count"`
}

// --- Comments ---

type addCommentRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

type commentResponse struct {
	ID        string `json:"id"`
	TicketID  string `json:"ticket_id"`
	AuthorID  string `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

type listCommentsResponse struct {
	Items []commentResponse `json:"items"`
	Count int               `json:"count"`
}
