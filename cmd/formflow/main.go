// Package main runs the formflow client: an interactive shell over the
// identity, forms and responses services with a file-backed login
// session.
package main

import (
	"bufio"
	"cmp"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mlukic/formflow/internal/account"
	"github.com/mlukic/formflow/internal/client/api"
	"github.com/mlukic/formflow/internal/client/auth"
	"github.com/mlukic/formflow/internal/config"
	"github.com/mlukic/formflow/internal/logger"
	"github.com/mlukic/formflow/internal/session"
)

var (
	version   string
	buildDate string
)

// app bundles the wired clients and the shell's mutable state.
type app struct {
	opts      *config.Options
	log       *zap.Logger
	store     *auth.Store
	account   *account.Service
	forms     *api.Forms
	responses *api.Responses

	// editor holds the form currently open for editing, nil when none.
	editor *session.Editor
	in     *bufio.Scanner
}

func main() {
	opts := config.Parse()

	fmt.Printf("formflow client\nVersion: %s\nBuild Date: %s\n",
		cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))

	zl := logger.New()
	level := "Info"
	if opts.Debug {
		level = "Debug"
	}
	if err := zl.Init(level); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Log.Sync() }()

	store, err := auth.Open(opts.SessionFile)
	if err != nil {
		zl.Log.Fatal("cannot open session file", zap.Error(err))
	}

	identity := api.NewIdentity(opts.AuthURL, api.LoginMode(opts.LoginMode), nil)
	a := &app{
		opts:      opts,
		log:       zl.Log,
		store:     store,
		account:   account.NewService(identity, store, account.OpenRegistry(opts.EmailsFile), zl.Log),
		forms:     api.NewForms(opts.FormsURL, nil),
		responses: api.NewResponses(opts.ResponsesURL, opts.SubmitPath, nil),
		in:        bufio.NewScanner(os.Stdin),
	}

	a.repl()
}

// repl runs the interactive shell loop.
func (a *app) repl() {
	fmt.Printf("Signed in as: %s. Type 'help' for commands.\n", a.store.State())

	for {
		fmt.Print("formflow> ")
		if !a.in.Scan() {
			break
		}
		args := strings.Fields(strings.TrimSpace(a.in.Text()))
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			fmt.Println("Bye")
			return
		}
		a.dispatch(args[0], args[1:])
	}
}

func (a *app) dispatch(cmd string, args []string) {
	switch cmd {
	case "help":
		printHelp()
	case "register":
		a.cmdRegister()
	case "login":
		a.cmdLogin()
	case "guest":
		a.cmdGuest()
	case "logout":
		a.cmdLogout()
	case "whoami":
		a.cmdWhoami()
	case "forms":
		a.cmdForms(strings.Join(args, " "))
	case "mine":
		a.cmdMine()
	case "create":
		a.cmdCreate(strings.Join(args, " "))
	case "open":
		a.cmdOpen(args)
	case "show":
		a.cmdShow()
	case "find":
		a.cmdFind(strings.Join(args, " "))
	case "rename":
		a.cmdRename(strings.Join(args, " "))
	case "describe":
		a.cmdDescribe(strings.Join(args, " "))
	case "lock":
		a.cmdSetLocked(true)
	case "unlock":
		a.cmdSetLocked(false)
	case "anon":
		a.cmdAnon(args)
	case "addq":
		a.cmdAddQuestion(args)
	case "editq":
		a.cmdEditQuestion(args)
	case "delq":
		a.cmdDeleteQuestion(args)
	case "clone":
		a.cmdCloneQuestion(args)
	case "up":
		a.cmdMove(args, session.Up)
	case "down":
		a.cmdMove(args, session.Down)
	case "order":
		a.cmdCommitOrder()
	case "collab":
		a.cmdCollab(args)
	case "fill":
		a.cmdFill(args)
	case "responses":
		a.cmdResponses(args)
	case "aggregate":
		a.cmdAggregate(args)
	case "export":
		a.cmdExport(args)
	case "delete":
		a.cmdDeleteForm(args)
	default:
		fmt.Println("Unknown command. Type 'help' for a list of commands.")
	}
}

func printHelp() {
	fmt.Println(`Account:
  register                 create an account
  login                    sign in
  guest                    browse without an account
  logout                   drop the session
  whoami                   show the session state

Forms:
  forms [search]           list forms (public listing when signed out)
  mine                     list your own and shared forms
  create <name>            create a form and open it
  open <id>                open a form for editing
  delete <id>              delete a form (owner only)

Editing the open form:
  show                     print the form and its questions
  find <text>              filter questions by text
  rename <name>            rename the form
  describe <text>          set the description
  lock | unlock            toggle the submission lock
  anon on|off              allow or forbid anonymous submissions
  addq <type>              add a question (prompts for details)
  editq <id>               edit a question
  delq <id>                delete a question
  clone <id>               duplicate a question
  up <id> | down <id>      move a question locally
  order                    push the local order to the server
  collab [add|rm] ...      manage collaborators

Responses:
  fill <id>                answer a form and submit
  responses <id>           list collected responses
  aggregate <id>           show summary statistics
  export <id>              print the CSV export link

exit                       quit`)
}
