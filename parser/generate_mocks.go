package parser

//go:generate mockgen -destination mock_loader.go -package parser github.com/sarchlab/fpgapr/parser Loader
