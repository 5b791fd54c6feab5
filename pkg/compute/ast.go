package compute

import "github.com/zclconf/go-cty/cty"

type stmt interface {
	stmtPos() int
}

type expr interface {
	exprPos() int
}

type (
	declStmt struct {
		pos   int
		kind  string // var, let or const
		names []string
		inits []expr // nil entries for declarations without initialiser
	}

	exprStmt struct {
		pos int
		x   expr
	}

	returnStmt struct {
		pos int
		x   expr // nil for a bare return
	}

	ifStmt struct {
		pos  int
		cond expr
		then stmt
		els  stmt // nil without else
	}

	blockStmt struct {
		pos  int
		body []stmt
	}

	emptyStmt struct {
		pos int
	}
)

func (s *declStmt) stmtPos() int   { return s.pos }
func (s *exprStmt) stmtPos() int   { return s.pos }
func (s *returnStmt) stmtPos() int { return s.pos }
func (s *ifStmt) stmtPos() int     { return s.pos }
func (s *blockStmt) stmtPos() int  { return s.pos }
func (s *emptyStmt) stmtPos() int  { return s.pos }

type (
	literalExpr struct {
		pos int
		val cty.Value
	}

	identExpr struct {
		pos  int
		name string
	}

	arrayExpr struct {
		pos   int
		elems []expr
	}

	unaryExpr struct {
		pos int
		op  string
		x   expr
	}

	binaryExpr struct {
		pos         int
		op          string
		left, right expr
	}

	logicalExpr struct {
		pos         int
		op          string // && or ||
		left, right expr
	}

	condExpr struct {
		pos             int
		cond, then, els expr
	}

	assignExpr struct {
		pos   int
		op    string // =, +=, -=, *=, /=, %=
		name  string
		value expr
	}

	memberExpr struct {
		pos  int
		x    expr
		name string
	}

	indexExpr struct {
		pos   int
		x     expr
		index expr
	}

	callExpr struct {
		pos    int
		callee expr
		args   []expr
	}
)

func (e *literalExpr) exprPos() int { return e.pos }
func (e *identExpr) exprPos() int   { return e.pos }
func (e *arrayExpr) exprPos() int   { return e.pos }
func (e *unaryExpr) exprPos() int   { return e.pos }
func (e *binaryExpr) exprPos() int  { return e.pos }
func (e *logicalExpr) exprPos() int { return e.pos }
func (e *condExpr) exprPos() int    { return e.pos }
func (e *assignExpr) exprPos() int  { return e.pos }
func (e *memberExpr) exprPos() int  { return e.pos }
func (e *indexExpr) exprPos() int   { return e.pos }
func (e *callExpr) exprPos() int    { return e.pos }

// program is a parsed script.
type program struct {
	body []stmt
}
