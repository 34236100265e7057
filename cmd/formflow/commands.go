package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mlukic/formflow/internal/account"
	"github.com/mlukic/formflow/internal/client/api"
	"github.com/mlukic/formflow/internal/fill"
	"github.com/mlukic/formflow/internal/models"
	"github.com/mlukic/formflow/internal/question"
	"github.com/mlukic/formflow/internal/session"
)

// prompt reads one line of input under a label.
func (a *app) prompt(label string) string {
	fmt.Print(label)
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *app) confirm(label string) bool {
	return strings.HasPrefix(strings.ToLower(a.prompt(label+" (y/n): ")), "y")
}

// requireToken returns the bearer token or prints a hint and reports
// false for signed-out sessions.
func (a *app) requireToken() (string, bool) {
	token := a.store.Token()
	if token == "" {
		fmt.Println("Log in first.")
		return "", false
	}
	return token, true
}

// requireEditor reports whether a form is open for editing.
func (a *app) requireEditor() bool {
	if a.editor == nil {
		fmt.Println("Open a form first: open <id>")
		return false
	}
	return true
}

func parseID(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	return id, err == nil
}

// editErr prints a mutation failure in user terms.
func editErr(err error) {
	switch {
	case errors.Is(err, session.ErrFormLocked):
		fmt.Println("The form is locked. Unlock it before editing questions.")
	case errors.Is(err, session.ErrTextRequired):
		fmt.Println("Question text must not be empty.")
	default:
		fmt.Println("Error:", api.Message(err))
	}
}

// ---- account ----

func (a *app) cmdRegister() {
	email := a.prompt("email: ")
	name := a.prompt("full name: ")
	password := a.prompt("password: ")

	err := a.account.Register(context.Background(), email, name, password)
	switch {
	case err == nil:
		fmt.Println("Registration successful. You can now log in.")
	case errors.Is(err, account.ErrAlreadyRegistered):
		fmt.Println("This email is already registered. Try logging in.")
	default:
		var ve *account.ValidationError
		if errors.As(err, &ve) {
			fmt.Println(ve.Error())
			return
		}
		fmt.Println("Registration failed:", api.Message(err))
	}
}

func (a *app) cmdLogin() {
	email := a.prompt("email: ")
	password := a.prompt("password: ")

	u, err := a.account.Login(context.Background(), email, password)
	if err != nil {
		var ve *account.ValidationError
		if errors.As(err, &ve) {
			fmt.Println(ve.Error())
			return
		}
		fmt.Println(api.LoginMessage(err))
		return
	}
	name := u.FullName
	if name == "" {
		name = u.Email
	}
	fmt.Println("Welcome,", name)
}

func (a *app) cmdGuest() {
	if err := a.account.BrowseAsGuest(); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Browsing as guest. Only public forms are visible.")
}

func (a *app) cmdLogout() {
	a.editor = nil
	if err := a.account.Logout(); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Signed out.")
}

func (a *app) cmdWhoami() {
	fmt.Println("Session:", a.store.State())
}

// ---- forms ----

func (a *app) cmdForms(q string) {
	forms, err := a.forms.Search(context.Background(), a.store.Token(), q)
	if err != nil {
		fmt.Println("Error:", api.Message(err))
		return
	}
	printFormList(forms)
}

func (a *app) cmdMine() {
	token, ok := a.requireToken()
	if !ok {
		return
	}
	forms, err := a.forms.Mine(context.Background(), token)
	if err != nil {
		fmt.Println("Error:", api.Message(err))
		return
	}
	printFormList(forms)
}

func printFormList(forms []models.Form) {
	if len(forms) == 0 {
		fmt.Println("No forms found.")
		return
	}
	for _, f := range forms {
		flags := ""
		if f.IsLocked {
			flags += " [locked]"
		}
		if f.AllowAnonymous {
			flags += " [public]"
		}
		fmt.Printf("#%d  %s%s\n", f.ID, f.Name, flags)
	}
}

func (a *app) cmdCreate(name string) {
	token, ok := a.requireToken()
	if !ok {
		return
	}
	if strings.TrimSpace(name) == "" {
		fmt.Println("Usage: create <name>")
		return
	}
	form, err := a.forms.Create(context.Background(), token, models.Form{Name: name})
	if err != nil {
		fmt.Println("Error:", api.Message(err))
		return
	}
	a.editor = session.NewEditor(form, a.forms, token)
	fmt.Printf("Created form #%d and opened it for editing.\n", form.ID)
}

func (a *app) cmdOpen(args []string) {
	token, ok := a.requireToken()
	if !ok {
		return
	}
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: open <id>")
		return
	}
	form, err := a.forms.Get(context.Background(), token, id)
	if err != nil {
		fmt.Println("Error:", api.Message(err))
		return
	}
	a.editor = session.NewEditor(form, a.forms, token)
	fmt.Printf("Opened form #%d (%s).\n", form.ID, form.Name)
}

func (a *app) cmdShow() {
	if !a.requireEditor() {
		return
	}
	form := a.editor.Form()
	fmt.Printf("#%d  %s\n", form.ID, form.Name)
	if form.Description != "" {
		fmt.Println(form.Description)
	}
	fmt.Printf("locked: %v  anonymous submissions: %v\n", form.IsLocked, form.AllowAnonymous)
	printQuestions(form.Questions)
}

func printQuestions(qs []models.Question) {
	if len(qs) == 0 {
		fmt.Println("(no questions)")
		return
	}
	for _, q := range qs {
		marker := ""
		if q.Required {
			marker = " *"
		}
		fmt.Printf("  [%d] (%s) %s%s%s\n", q.ID, q.Type, q.Text, marker, optionsSummary(&q))
	}
}

func optionsSummary(q *models.Question) string {
	switch q.Type {
	case models.SingleChoice, models.MultiChoice:
		return " {" + strings.Join(fill.Choices(q), ", ") + "}"
	case models.Numeric:
		if vals := fill.Values(q); vals != nil {
			parts := make([]string, len(vals))
			for i, v := range vals {
				parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
			}
			return " {" + strings.Join(parts, ", ") + "}"
		}
	}
	return ""
}

func (a *app) cmdFind(search string) {
	if !a.requireEditor() {
		return
	}
	printQuestions(a.editor.Session().Filter(search))
}

func (a *app) cmdRename(name string) {
	if !a.requireEditor() {
		return
	}
	if err := a.editor.PatchForm(context.Background(), models.FormPatch{Name: &name}); err != nil {
		editErr(err)
		return
	}
	fmt.Println("Renamed.")
}

func (a *app) cmdDescribe(desc string) {
	if !a.requireEditor() {
		return
	}
	if err := a.editor.PatchForm(context.Background(), models.FormPatch{Description: &desc}); err != nil {
		editErr(err)
		return
	}
	fmt.Println("Description updated.")
}

func (a *app) cmdSetLocked(v bool) {
	if !a.requireEditor() {
		return
	}
	if err := a.editor.SetLocked(context.Background(), v); err != nil {
		editErr(err)
		return
	}
	if v {
		fmt.Println("Form locked. It no longer accepts responses or edits.")
	} else {
		fmt.Println("Form unlocked.")
	}
}

func (a *app) cmdAnon(args []string) {
	if !a.requireEditor() {
		return
	}
	if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
		fmt.Println("Usage: anon on|off")
		return
	}
	if err := a.editor.SetAllowAnonymous(context.Background(), args[0] == "on"); err != nil {
		editErr(err)
		return
	}
	fmt.Println("Anonymous submissions:", args[0])
}

// ---- questions ----

func (a *app) cmdAddQuestion(args []string) {
	if !a.requireEditor() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: addq <type>  where type is one of:", typeList())
		return
	}
	t := models.QuestionType(args[0])
	if !t.Known() {
		fmt.Println("Unknown question type. Supported:", typeList())
		return
	}

	d := a.promptDraft(t)
	q, err := a.editor.AddQuestion(context.Background(), d)
	if err != nil {
		editErr(err)
		return
	}
	fmt.Printf("Added question [%d].\n", q.ID)
}

func typeList() string {
	parts := make([]string, len(models.QuestionTypes))
	for i, t := range models.QuestionTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// promptDraft collects the editor fields for a question of type t.
func (a *app) promptDraft(t models.QuestionType) question.Draft {
	d := question.Draft{Type: t}
	d.Text = a.prompt("text: ")
	d.Required = a.confirm("required")

	switch t {
	case models.SingleChoice, models.MultiChoice:
		d.Choices = a.prompt("choices (comma separated): ")
		if t == models.MultiChoice {
			d.RequiredCount = a.prompt("required picks (empty for any): ")
		}
	case models.Numeric:
		d.NumberList = a.prompt("numbers (comma separated, empty to use a range): ")
		if strings.TrimSpace(d.NumberList) == "" {
			start, err1 := strconv.ParseFloat(a.prompt("range start: "), 64)
			end, err2 := strconv.ParseFloat(a.prompt("range end: "), 64)
			step, err3 := strconv.ParseFloat(a.prompt("range step: "), 64)
			if err1 == nil && err2 == nil && err3 == nil {
				d.Range = &models.NumericRange{Start: start, End: end, Step: step}
			}
		}
	}
	return d
}

func (a *app) cmdEditQuestion(args []string) {
	if !a.requireEditor() {
		return
	}
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: editq <id>")
		return
	}
	var current *models.Question
	form := a.editor.Form()
	for i := range form.Questions {
		if form.Questions[i].ID == id {
			current = &form.Questions[i]
			break
		}
	}
	if current == nil {
		fmt.Println("No such question in the open form.")
		return
	}

	d := a.promptDraft(current.Type)
	d.OrderIndex = current.OrderIndex
	if _, err := a.editor.UpdateQuestion(context.Background(), id, d.Payload()); err != nil {
		editErr(err)
		return
	}
	fmt.Println("Question updated.")
}

func (a *app) cmdDeleteQuestion(args []string) {
	if !a.requireEditor() {
		return
	}
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: delq <id>")
		return
	}
	if err := a.editor.DeleteQuestion(context.Background(), id); err != nil {
		editErr(err)
		return
	}
	fmt.Println("Question deleted.")
}

func (a *app) cmdCloneQuestion(args []string) {
	if !a.requireEditor() {
		return
	}
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: clone <id>")
		return
	}
	q, err := a.editor.CloneQuestion(context.Background(), id)
	if err != nil {
		editErr(err)
		return
	}
	fmt.Printf("Cloned as [%d].\n", q.ID)
}

func (a *app) cmdMove(args []string, dir session.Direction) {
	if !a.requireEditor() {
		return
	}
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: up <id> | down <id>")
		return
	}
	var err error
	if dir == session.Up {
		err = a.editor.MoveUp(id)
	} else {
		err = a.editor.MoveDown(id)
	}
	if err != nil {
		editErr(err)
		return
	}
	fmt.Println("Moved. Run 'order' to save the new order.")
}

func (a *app) cmdCommitOrder() {
	if !a.requireEditor() {
		return
	}
	if err := a.editor.CommitOrder(context.Background()); err != nil {
		editErr(err)
		return
	}
	fmt.Println("Order saved.")
}

// ---- collaborators ----

func (a *app) cmdCollab(args []string) {
	if !a.requireEditor() {
		return
	}
	token, ok := a.requireToken()
	if !ok {
		return
	}
	ctx := context.Background()
	formID := a.editor.Form().ID

	switch {
	case len(args) == 0:
		cs, err := a.forms.Collaborators(ctx, token, formID)
		if err != nil {
			fmt.Println("Error:", api.Message(err))
			return
		}
		if len(cs) == 0 {
			fmt.Println("No collaborators.")
			return
		}
		for _, c := range cs {
			fmt.Printf("  [%d] %s (%s)\n", c.ID, c.Email, c.Role)
		}
	case args[0] == "add" && len(args) >= 3:
		c, err := a.forms.AddCollaborator(ctx, token, formID, args[1], args[2])
		if err != nil {
			fmt.Println("Error:", api.Message(err))
			return
		}
		fmt.Printf("Added %s as %s.\n", c.Email, c.Role)
	case args[0] == "rm" && len(args) >= 2:
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Println("Usage: collab rm <id>")
			return
		}
		if err := a.forms.RemoveCollaborator(ctx, token, formID, id); err != nil {
			fmt.Println("Error:", api.Message(err))
			return
		}
		fmt.Println("Removed.")
	default:
		fmt.Println("Usage: collab | collab add <email> viewer|editor | collab rm <id>")
	}
}

// ---- responses ----

func (a *app) cmdFill(args []string) {
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: fill <id>")
		return
	}
	ctx := context.Background()
	token := a.store.Token()

	form, err := a.forms.ForFill(ctx, token, id)
	if err != nil {
		fmt.Println("Error:", api.Message(err))
		return
	}

	fmt.Printf("%s\n", form.Name)
	if form.Description != "" {
		fmt.Println(form.Description)
	}
	answers := fill.Answers{}
	for i := range form.Questions {
		a.promptAnswer(&form.Questions[i], answers)
	}

	if err := fill.Gate(&form, token, answers); err != nil {
		switch {
		case errors.Is(err, fill.ErrLocked):
			fmt.Println("This form is locked and not accepting responses.")
		case errors.Is(err, fill.ErrLoginRequired):
			fmt.Println("This form requires an account. Log in before submitting.")
		default:
			fmt.Println(err)
		}
		return
	}

	resp, err := a.responses.Submit(ctx, token, fill.BuildSubmission(&form, answers))
	if err != nil {
		fmt.Println("Error:", api.Message(err))
		return
	}
	fmt.Println("Response recorded:", resp.ID)
}

// promptAnswer asks for one answer and records it. Empty input leaves
// the question unanswered.
func (a *app) promptAnswer(q *models.Question, answers fill.Answers) {
	label := q.Text
	if q.Required {
		label += " *"
	}

	switch fill.ControlFor(q) {
	case fill.ControlTextInput, fill.ControlTextArea:
		v := a.prompt(label + ": ")
		if max := fill.MaxLen(q); len([]rune(v)) > max {
			v = string([]rune(v)[:max])
		}
		if v != "" {
			answers.Set(q.ID, v)
		}
	case fill.ControlRadioGroup:
		choices := fill.Choices(q)
		for i, c := range choices {
			fmt.Printf("  %d) %s\n", i+1, c)
		}
		if c, ok := pickChoice(choices, a.prompt(label+" (number): ")); ok {
			answers.Set(q.ID, c)
		}
	case fill.ControlCheckboxGroup:
		choices := fill.Choices(q)
		for i, c := range choices {
			fmt.Printf("  %d) %s\n", i+1, c)
		}
		raw := a.prompt(label + " (numbers, comma separated): ")
		picks := []string{}
		for _, part := range strings.Split(raw, ",") {
			if c, ok := pickChoice(choices, strings.TrimSpace(part)); ok {
				picks = append(picks, c)
			}
		}
		if len(picks) > 0 {
			answers.Set(q.ID, picks)
		}
	case fill.ControlNumberSelect, fill.ControlNumberInput:
		hint := ""
		if vals := fill.Values(q); len(vals) > 0 {
			hint = optionsSummary(q)
		}
		if n, err := strconv.ParseFloat(a.prompt(label+hint+": "), 64); err == nil {
			answers.Set(q.ID, n)
		}
	case fill.ControlDateInput:
		if v := a.prompt(label + " (YYYY-MM-DD): "); v != "" {
			answers.Set(q.ID, v)
		}
	case fill.ControlTimeInput:
		if v := a.prompt(label + " (HH:MM): "); v != "" {
			answers.Set(q.ID, v)
		}
	default:
		fmt.Printf("%s: (unsupported question type, skipped)\n", label)
	}
}

// pickChoice resolves a 1-based index or a literal choice value.
func pickChoice(choices []string, input string) (string, bool) {
	if input == "" {
		return "", false
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(choices) {
		return choices[n-1], true
	}
	for _, c := range choices {
		if c == input {
			return c, true
		}
	}
	return "", false
}

func (a *app) cmdResponses(args []string) {
	token, ok := a.requireToken()
	if !ok {
		return
	}
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: responses <id>")
		return
	}
	list, err := a.responses.List(context.Background(), token, id)
	if err != nil {
		fmt.Println("Error:", api.Message(err))
		return
	}
	if len(list) == 0 {
		fmt.Println("No responses yet.")
		return
	}
	for _, r := range list {
		fmt.Printf("  %s  %s  (%d answers)\n", r.ID, r.CreatedAt, len(r.Answers))
	}
}

func (a *app) cmdAggregate(args []string) {
	token, ok := a.requireToken()
	if !ok {
		return
	}
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: aggregate <id>")
		return
	}
	agg, err := a.responses.Aggregate(context.Background(), token, id)
	if err != nil {
		fmt.Println("Error:", api.Message(err))
		return
	}
	var pretty map[string]any
	if json.Unmarshal(agg, &pretty) == nil {
		b, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Println(string(agg))
}

func (a *app) cmdExport(args []string) {
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: export <id>")
		return
	}
	fmt.Println(a.responses.ExportURL(id))
}

func (a *app) cmdDeleteForm(args []string) {
	token, ok := a.requireToken()
	if !ok {
		return
	}
	id, ok := parseID(args)
	if !ok {
		fmt.Println("Usage: delete <id>")
		return
	}
	if !a.confirm(fmt.Sprintf("delete form #%d?", id)) {
		return
	}
	if err := a.forms.Delete(context.Background(), token, id); err != nil {
		fmt.Println("Error:", api.Message(err))
		return
	}
	if a.editor != nil && a.editor.Form().ID == id {
		a.editor = nil
	}
	fmt.Println("Form deleted.")
}
