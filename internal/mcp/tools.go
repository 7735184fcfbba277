package mcp

// Tool maps an MCP tool name onto the command it runs.
type Tool struct {
	Name        string
	Command     string
	Description string
	InputSchema map[string]interface{}
}

func object(required []string, props map[string]interface{}) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func boolean(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}

func integer(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description, "minimum": 1}
}

// taskActionTool describes the commands that take a task and the acting user.
func taskActionTool(name, command, description string) Tool {
	return Tool{
		Name:        name,
		Command:     command,
		Description: description,
		InputSchema: object([]string{"id", "userId"}, map[string]interface{}{
			"id":     str("Task ID"),
			"userId": str("Acting user ID"),
		}),
	}
}

var tools = []Tool{
	// User commands
	{
		Name:        "taskmarket_user_create",
		Command:     "taskmarket.user.create",
		Description: "Register a new user",
		InputSchema: object([]string{"username", "email"}, map[string]interface{}{
			"username": str("Unique username, at most 150 characters"),
			"email":    str("Email address"),
		}),
	},
	{
		Name:        "taskmarket_user_get",
		Command:     "taskmarket.user.get",
		Description: "Get a user",
		InputSchema: object([]string{"userId"}, map[string]interface{}{
			"userId": str("User ID"),
		}),
	},
	{
		Name:        "taskmarket_user_profile",
		Command:     "taskmarket.user.profile",
		Description: "Set whether a user is an employer or an employee (once only)",
		InputSchema: object([]string{"userId", "isEmployer"}, map[string]interface{}{
			"userId":     str("User ID"),
			"isEmployer": boolean("True for employers, false for employees"),
		}),
	},
	{
		Name:        "taskmarket_user_interest",
		Command:     "taskmarket.user.interest",
		Description: "Declare or withdraw interest in a property (employees only)",
		InputSchema: object([]string{"userId", "propertyId"}, map[string]interface{}{
			"userId":     str("User ID"),
			"propertyId": str("Property ID"),
			"interested": boolean("Defaults to true"),
		}),
	},
	{
		Name:        "taskmarket_user_behavior",
		Command:     "taskmarket.user.behavior",
		Description: "Record that a user liked or disliked a task",
		InputSchema: object([]string{"userId", "taskId", "like"}, map[string]interface{}{
			"userId": str("User ID"),
			"taskId": str("Task ID"),
			"like":   boolean("True for like, false for dislike"),
		}),
	},
	{
		Name:        "taskmarket_user_summary",
		Command:     "taskmarket.user.summary",
		Description: "Summarize what the recommender knows about a user",
		InputSchema: object([]string{"userId"}, map[string]interface{}{
			"userId": str("User ID"),
		}),
	},
	// Property commands
	{
		Name:        "taskmarket_property_create",
		Command:     "taskmarket.property.create",
		Description: "Create a property tasks can be tagged with",
		InputSchema: object([]string{"userId", "name"}, map[string]interface{}{
			"userId": str("Creator user ID"),
			"name":   str("Property name, at most 100 characters"),
		}),
	},
	{
		Name:        "taskmarket_property_list",
		Command:     "taskmarket.property.list",
		Description: "List all properties",
		InputSchema: object(nil, map[string]interface{}{}),
	},
	// Task commands
	{
		Name:        "taskmarket_task_create",
		Command:     "taskmarket.task.create",
		Description: "Post a new task (employers only)",
		InputSchema: object([]string{"userId", "name", "description"}, map[string]interface{}{
			"userId":      str("Owner user ID"),
			"name":        str("Task name, at most 80 characters"),
			"description": str("Task description, at most 500 characters"),
			"properties": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Property IDs to tag the task with",
			},
		}),
	},
	{
		Name:        "taskmarket_task_get",
		Command:     "taskmarket.task.get",
		Description: "Get a task",
		InputSchema: object([]string{"id"}, map[string]interface{}{
			"id": str("Task ID"),
		}),
	},
	{
		Name:        "taskmarket_task_list",
		Command:     "taskmarket.task.list",
		Description: "List tasks with optional filters",
		InputSchema: object(nil, map[string]interface{}{
			"active": boolean("Only active or only inactive tasks"),
			"status": map[string]interface{}{
				"type": "string",
				"enum": []string{"Not started", "In progress", "In review", "Done"},
			},
			"ownerId":    str("Owner user ID"),
			"assigneeId": str("Assignee user ID"),
		}),
	},
	{
		Name:        "taskmarket_task_update",
		Command:     "taskmarket.task.update",
		Description: "Change a task's name, description or output (owner only)",
		InputSchema: object([]string{"id", "userId"}, map[string]interface{}{
			"id":          str("Task ID"),
			"userId":      str("Acting user ID"),
			"name":        str("New name"),
			"description": str("New description"),
			"output":      str("New output"),
		}),
	},
	taskActionTool("taskmarket_task_deactivate", "taskmarket.task.deactivate", "Withdraw a task from the marketplace (owner only)"),
	taskActionTool("taskmarket_task_delete", "taskmarket.task.delete", "Delete a task (owner only)"),
	taskActionTool("taskmarket_task_assign", "taskmarket.task.assign", "Claim an unassigned task (employees only)"),
	taskActionTool("taskmarket_task_unassign", "taskmarket.task.unassign", "Release a claimed task (assignee only)"),
	taskActionTool("taskmarket_task_submit", "taskmarket.task.submit", "Submit a task for review (assignee only)"),
	taskActionTool("taskmarket_task_approve", "taskmarket.task.approve", "Approve a submitted task (owner only)"),
	{
		Name:        "taskmarket_task_property_link",
		Command:     "taskmarket.task.property.link",
		Description: "Tag a task with a property (owner only)",
		InputSchema: object([]string{"taskId", "propertyId", "userId"}, map[string]interface{}{
			"taskId":     str("Task ID"),
			"propertyId": str("Property ID"),
			"userId":     str("Acting user ID"),
		}),
	},
	{
		Name:        "taskmarket_task_property_unlink",
		Command:     "taskmarket.task.property.unlink",
		Description: "Remove a property from a task (owner only)",
		InputSchema: object([]string{"taskId", "propertyId", "userId"}, map[string]interface{}{
			"taskId":     str("Task ID"),
			"propertyId": str("Property ID"),
			"userId":     str("Acting user ID"),
		}),
	},
	// Recommendations
	{
		Name:        "taskmarket_recommend",
		Command:     "taskmarket.recommend",
		Description: "Rank every active task for a user by interest, history and behavior similarity",
		InputSchema: object([]string{"userId"}, map[string]interface{}{
			"userId":   str("User ID"),
			"page":     integer("1-based page number"),
			"pageSize": integer("Items per page, at most 100"),
		}),
	},
}

func toolByName(name string) (Tool, bool) {
	for _, tool := range tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}
