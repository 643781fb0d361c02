package model

// Lookup rows referenced by ItemMovimento.

type Receita struct {
	ID        uint   `gorm:"primaryKey"`
	Descricao string `gorm:"type:varchar(120);not null"`
}

func (Receita) TableName() string { return "receitas" }

type Despesa struct {
	ID        uint   `gorm:"primaryKey"`
	Descricao string `gorm:"type:varchar(120);not null"`
}

func (Despesa) TableName() string { return "despesas" }

type Fornecedor struct {
	ID   uint   `gorm:"primaryKey"`
	Nome string `gorm:"type:varchar(120);not null"`
}

func (Fornecedor) TableName() string { return "fornecedores" }

type Dentista struct {
	ID   uint   `gorm:"primaryKey"`
	Nome string `gorm:"type:varchar(120);not null"`
}

func (Dentista) TableName() string { return "dentistas" }
