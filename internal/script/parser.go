package script

import (
	"errors"
	"fmt"
)

// Parser builds the statement sequence from a token stream. The grammar is
// line oriented and deliberately flat: no loops, no nested conditionals.
type Parser struct {
	tokens []Token
	pos    int
	errs   []error
}

// Parse is the convenience entry point: scan and parse in one step.
func Parse(src string) ([]Stmt, error) {
	tokens, err := NewScanner(src).Scan()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).ParseAll()
}

// NewParser creates a parser over a scanned token stream.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseAll parses every line. Lines that fail to parse are skipped and their
// errors collected, so a single report covers all syntax problems at once.
func (p *Parser) ParseAll() ([]Stmt, error) {
	var stmts []Stmt
	for !p.check(TokenEOF) {
		if p.check(TokenEOL) {
			p.advance()
			continue
		}
		stmt, err := p.statement()
		if err != nil {
			p.errs = append(p.errs, err)
			p.synchronize()
			continue
		}
		if !p.check(TokenEOF) {
			if _, err := p.expect(TokenEOL); err != nil {
				p.errs = append(p.errs, err)
				p.synchronize()
				continue
			}
		}
		stmts = append(stmts, stmt)
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return stmts, nil
}

func (p *Parser) statement() (Stmt, error) {
	switch tok := p.peek(); tok.Kind {
	case TokenComment:
		p.advance()
		return &CommentStmt{Text: tok.Lexeme}, nil
	case TokenCatchError:
		p.advance()
		chain, err := p.cmdChain()
		if err != nil {
			return nil, err
		}
		return &CatchErrStmt{Action: chain}, nil
	case TokenIf:
		return p.ifStmt()
	case TokenSave:
		return p.saveStmt()
	default:
		chain, err := p.cmdChain()
		if err != nil {
			return nil, err
		}
		return &CommandStmt{Chain: chain}, nil
	}
}

func (p *Parser) ifStmt() (Stmt, error) {
	p.advance() // if
	cond, err := p.command()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenThen); err != nil {
		return nil, err
	}
	chain, err := p.cmdChain()
	if err != nil {
		return nil, err
	}
	return &IfStmt{Condition: cond, Then: chain}, nil
}

func (p *Parser) saveStmt() (Stmt, error) {
	p.advance() // save
	value, err := p.expect(TokenString)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenAs); err != nil {
		return nil, err
	}
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	return &SaveStmt{Value: value.Lexeme, Name: name.Lexeme}, nil
}

func (p *Parser) cmdChain() (CmdChain, error) {
	var chain CmdChain
	for {
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		chain = append(chain, cmd)
		if !p.check(TokenAnd) {
			return chain, nil
		}
		p.advance()
	}
}

func (p *Parser) command() (Cmd, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenLocate:
		p.advance()
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		return &LocateCmd{Locator: param}, nil
	case TokenLocateNoScroll:
		p.advance()
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		return &LocateNoScrollCmd{Locator: param}, nil
	case TokenType:
		p.advance()
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		return &TypeCmd{Text: param}, nil
	case TokenClick:
		p.advance()
		return &ClickCmd{}, nil
	case TokenRefresh:
		p.advance()
		return &RefreshCmd{}, nil
	case TokenTryAgain:
		p.advance()
		return &TryAgainCmd{}, nil
	case TokenScreenshot:
		p.advance()
		return &ScreenshotCmd{}, nil
	case TokenReadTo:
		p.advance()
		name, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		return &ReadToCmd{Name: name.Lexeme}, nil
	case TokenURL:
		p.advance()
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		return &URLCmd{URL: param}, nil
	case TokenPress:
		p.advance()
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		return &PressCmd{Key: param}, nil
	case TokenChill:
		p.advance()
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		return &ChillCmd{Seconds: param}, nil
	case TokenSelect:
		p.advance()
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		return &SelectCmd{Option: param}, nil
	case TokenDragTo:
		p.advance()
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		return &DragToCmd{Target: param}, nil
	case TokenUpload:
		p.advance()
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		return &UploadCmd{Path: param}, nil
	case TokenIf:
		return nil, fmt.Errorf("line %d: conditionals cannot be nested", tok.Line)
	default:
		return nil, fmt.Errorf("line %d: expected a command, found %s", tok.Line, describe(tok))
	}
}

func (p *Parser) param() (CmdParam, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenString:
		p.advance()
		return CmdParam{Value: tok.Lexeme}, nil
	case TokenIdent:
		p.advance()
		return CmdParam{Value: tok.Lexeme, IsVariable: true}, nil
	default:
		return CmdParam{}, fmt.Errorf("line %d: expected a string or variable, found %s", tok.Line, describe(tok))
	}
}

func (p *Parser) peek() Token { return p.tokens[p.pos] }

func (p *Parser) check(kind TokenKind) bool { return p.peek().Kind == kind }

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return Token{}, fmt.Errorf("line %d: expected %s, found %s", tok.Line, kind, describe(tok))
	}
	return p.advance(), nil
}

// synchronize skips to the start of the next line after a parse error.
func (p *Parser) synchronize() {
	for !p.check(TokenEOF) && !p.check(TokenEOL) {
		p.advance()
	}
	if p.check(TokenEOL) {
		p.advance()
	}
}

func describe(tok Token) string {
	switch tok.Kind {
	case TokenEOL, TokenEOF:
		return tok.Kind.String()
	case TokenString:
		return fmt.Sprintf("%q", tok.Lexeme)
	default:
		return fmt.Sprintf("'%s'", tok.Lexeme)
	}
}
