package models

// TodoItem is a to-do record owned by one user. (UserID, TodoID) is unique.
type TodoItem struct {
	UserID        string `json:"userId" dynamodbav:"userId" bson:"userId"`
	TodoID        string `json:"todoId" dynamodbav:"todoId" bson:"todoId"`
	CreatedAt     string `json:"createdAt" dynamodbav:"createdAt" bson:"createdAt"` // ISO-8601, immutable
	Name          string `json:"name" dynamodbav:"name" bson:"name"`
	DueDate       string `json:"dueDate,omitempty" dynamodbav:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Done          bool   `json:"done" dynamodbav:"done" bson:"done"`
	AttachmentURL string `json:"attachmentUrl,omitempty" dynamodbav:"attachmentUrl,omitempty" bson:"attachmentUrl,omitempty"`
}

// TodoUpdate overwrites all three fields of an existing item.
type TodoUpdate struct {
	Name    string `json:"name"`
	DueDate string `json:"dueDate"`
	Done    bool   `json:"done"`
}

// CreateTodoRequest is the body of POST /todos.
type CreateTodoRequest struct {
	Name    string `json:"name"`
	DueDate string `json:"dueDate"`
}

// UpdateTodoRequest is the body of PATCH /todos/{todoId}.
type UpdateTodoRequest struct {
	Name    string `json:"name"`
	DueDate string `json:"dueDate"`
	Done    bool   `json:"done"`
}
