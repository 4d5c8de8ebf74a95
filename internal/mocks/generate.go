package mocks

//go:generate mockery --name RunStore --srcpkg github.com/hepframe/hepframe/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
